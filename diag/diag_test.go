package diag

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	if p.Styled() {
		t.Fatal("buffer must not be styled")
	}

	p.Failure("/usr/bin/llvm-mc", []byte("nop"), nil, []byte("error: bad\n"))

	want := "------ llvm-mc input ------\nnop\n------ llvm-mc stderr ------\nerror: bad\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSectionEmptyContent(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).Section("title", nil)
	if buf.String() != "------ title ------\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestNotesAndErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)
	p.Notef("found %s", "x")
	p.Errorf("failed %d", 1)
	if buf.String() != "found x\nfailed 1\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRegularFileIsNotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if New(f).Styled() {
		t.Error("regular file reported as terminal")
	}
}

func TestProgramName(t *testing.T) {
	for in, want := range map[string]string{
		"llvm-mc":               "llvm-mc",
		"/opt/llvm/bin/llvm-mc": "llvm-mc",
		`C:\llvm\llvm-mc.exe`:   "llvm-mc.exe",
	} {
		if got := programName(in); got != want {
			t.Errorf("programName(%q) = %q", in, got)
		}
	}
}
