package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseScan,
				Kind:   KindInvalidData,
				Path:   []string{"libfoo.rlib"},
				Detail: "truncated member",
			},
			contains: []string{"[scan]", "invalid_data", "`libfoo.rlib`", "truncated member"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindVersionSkew,
			},
			contains: []string{"[decode]", "version_skew"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLink,
				Kind:   KindIO,
				Detail: "spawn",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[link]", "io", "spawn", "caused by", "underlying error"},
		},
		{
			name:     "key path",
			err:      &Error{Phase: PhaseResolve, Kind: KindCycle, Path: []string{"embed", "mod", "a"}},
			contains: []string{"`embed:mod:a`"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseRewrite,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindVersionSkew,
		Path:  []string{"js_bindgen.import"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindVersionSkew}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseScan, Kind: KindVersionSkew}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidData}) {
		t.Error("Is should not match different kind")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseArgs, KindInvalidInput).
		Path("-o").
		Value(2).
		Cause(cause).
		Detail("expected %d value, got %d", 1, 2).
		Build()

	if err.Phase != PhaseArgs {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseArgs)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if len(err.Path) != 1 || err.Path[0] != "-o" {
		t.Errorf("Path = %v, want [-o]", err.Path)
	}
	if err.Value != 2 {
		t.Errorf("Value = %v, want 2", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected 1 value, got 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("VersionSkew", func(t *testing.T) {
		err := VersionSkew("js_bindgen.embed", 7, "length exceeds section")
		if err.Phase != PhaseDecode || err.Kind != KindVersionSkew {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Value != 7 {
			t.Errorf("Value = %v, want 7", err.Value)
		}
		if !strings.Contains(err.Error(), "offset 7") {
			t.Errorf("message %q should contain offset", err.Error())
		}
	})

	t.Run("DuplicateDefinition", func(t *testing.T) {
		err := DuplicateDefinition("import", "mod", "foo", "() => 1", "() => 2")
		msg := err.Error()
		for _, s := range []string{"mod:foo", "() => 1", "() => 2", "JS import 1", "JS import 2"} {
			if !strings.Contains(msg, s) {
				t.Errorf("message %q should contain %q", msg, s)
			}
		}
		if err.Kind != KindDuplicateDefinition {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("IO", func(t *testing.T) {
		err := IO(PhaseEmit, "out.mjs", errors.New("denied"))
		if err.Kind != KindIO || err.Path[0] != "out.mjs" {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseRewrite, "components")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}

func TestSubprocessError(t *testing.T) {
	err := &SubprocessError{Phase: PhaseAssemble, Program: "llvm-mc", ExitCode: 3}
	if !strings.Contains(err.Error(), "llvm-mc") || !strings.Contains(err.Error(), "3") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, &Error{Phase: PhaseAssemble, Kind: KindSubprocess}) {
		t.Error("errors.Is should match subprocess kind")
	}

	var sub *SubprocessError
	wrapped := Wrap(PhaseAssemble, KindSubprocess, err, "compile")
	if !errors.As(wrapped, &sub) || sub.ExitCode != 3 {
		t.Error("errors.As should find the subprocess error through Wrap")
	}
}

func TestMissingDefinitionsError(t *testing.T) {
	t.Run("grouped and sorted", func(t *testing.T) {
		err := NewMissingDefinitionsError([]MissingDefinition{
			{Namespace: "import", Module: "mod", Name: "foo"},
			{Namespace: "embed", Module: "mod", Name: "helper"},
			{Namespace: "import", Module: "mod", Name: "bar"},
		})
		if len(err.Missing) != 3 {
			t.Fatalf("expected 3 keys, got %d", len(err.Missing))
		}
		if err.Missing[0].Namespace != "embed" || err.Missing[1].Name != "bar" {
			t.Errorf("keys not sorted: %+v", err.Missing)
		}

		msg := err.Error()
		if !strings.Contains(msg, "missing 3") {
			t.Errorf("error should contain count, got %s", msg)
		}
		if !strings.Contains(msg, "JS embed `mod`:") || !strings.Contains(msg, "JS import `mod`:") {
			t.Errorf("error should group by namespace and module, got %s", msg)
		}
		if strings.Index(msg, "- bar") > strings.Index(msg, "- foo") {
			t.Errorf("names should be sorted, got %s", msg)
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMissingDefinitionsError(nil)
		if !strings.Contains(err.Error(), "no keys specified") {
			t.Errorf("empty error should have specific message, got: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewMissingDefinitionsError([]MissingDefinition{{Namespace: "embed", Module: "m", Name: "n"}})
		if !errors.Is(err, &MissingDefinitionsError{}) {
			t.Error("errors.Is should match MissingDefinitionsError")
		}
		if !errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindMissingDefinition}) {
			t.Error("errors.Is should match the missing_definition kind")
		}
	})
}
