// Package diag prints subprocess diagnostics to stderr, styled when stderr is
// a terminal.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Printer writes banners and captured process output.
type Printer struct {
	w      io.Writer
	mu     sync.Mutex
	styled bool
}

// New creates a printer writing to w. Output is styled only when w is a
// terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, styled: isTerminal(w)}
}

// NewPlain creates a printer that never styles its output.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

var (
	stderr     *Printer
	stderrOnce sync.Once
)

// Stderr returns the shared printer for os.Stderr.
func Stderr() *Printer {
	stderrOnce.Do(func() {
		stderr = New(os.Stderr)
	})
	return stderr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Styled reports whether output carries terminal styling.
func (p *Printer) Styled() bool {
	return p.styled
}

// Section prints a banner followed by content. The content always ends with
// a newline.
func (p *Printer) Section(title string, content []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, p.render(bannerStyle, Banner(title)))
	_, _ = p.w.Write(content)
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		fmt.Fprintln(p.w)
	}
}

// Banner formats the plain banner line for title.
func Banner(title string) string {
	return "------ " + title + " ------"
}

// Errorf prints a highlighted error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.render(errorStyle, fmt.Sprintf(format, args...)))
}

// Notef prints a muted informational line.
func (p *Printer) Notef(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.render(mutedStyle, fmt.Sprintf(format, args...)))
}

// Failure dumps everything known about a failed child process: the text it
// was fed, then whatever it printed. Empty streams are omitted.
func (p *Printer) Failure(program string, input, stdout, stderr []byte) {
	name := programName(program)
	if input != nil {
		p.Section(name+" input", input)
	}
	if len(stdout) > 0 {
		p.Section(name+" stdout", stdout)
	}
	if len(stderr) > 0 {
		p.Section(name+" stderr", stderr)
	}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func programName(program string) string {
	if i := strings.LastIndexAny(program, `/\`); i >= 0 {
		return program[i+1:]
	}
	return program
}
