package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseArgs     Phase = "args"     // linker argument translation
	PhaseScan     Phase = "scan"     // archive/object scanning
	PhaseDecode   Phase = "decode"   // metadata section decoding
	PhaseAssemble Phase = "assemble" // assembly compilation
	PhaseLink     Phase = "link"     // backing linker invocation
	PhaseRewrite  Phase = "rewrite"  // linked module rewriting
	PhaseResolve  Phase = "resolve"  // import/embed resolution
	PhaseEmit     Phase = "emit"     // glue rendering
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidData         Kind = "invalid_data"
	KindVersionSkew         Kind = "version_skew"
	KindSubprocess          Kind = "subprocess"
	KindDuplicateDefinition Kind = "duplicate_definition"
	KindMissingDefinition   Kind = "missing_definition"
	KindCycle               Kind = "cycle"
	KindUnsupported         Kind = "unsupported"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
	KindIO                  Kind = "io"
)

// Error is the structured error type used throughout the linker
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at `")
		b.WriteString(strings.Join(e.Path, ":"))
		b.WriteByte('`')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the key path (file, or module and item name)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// VersionSkew creates a metadata decoding error. These always indicate that the
// producer of a custom section and this linker disagree on the wire format.
func VersionSkew(section string, offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindVersionSkew,
		Path:   []string{section},
		Detail: fmt.Sprintf("%s at offset %d", detail, offset),
		Value:  offset,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Internal creates an internal invariant violation error
func Internal(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}

// IO wraps a filesystem failure on path
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindIO,
		Path:  []string{path},
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// DuplicateDefinition reports a second definition of an already defined key.
// Both snippets are shown so the conflicting producers can be identified.
func DuplicateDefinition(namespace, module, name, first, second string) *Error {
	return &Error{
		Phase: PhaseResolve,
		Kind:  KindDuplicateDefinition,
		Path:  []string{namespace, module, name},
		Detail: fmt.Sprintf("found multiple JS %ss for `%s:%s`\n\tJS %s 1:\n%s\n\tJS %s 2:\n%s",
			namespace, module, name, namespace, first, namespace, second),
	}
}

// SubprocessError is returned when a child process exits unsuccessfully.
// ExitCode is propagated as the exit status of the linker itself.
type SubprocessError struct {
	Phase    Phase
	Program  string
	ExitCode int
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("[%s] %s: `%s` process failed with exit code %d",
		e.Phase, KindSubprocess, e.Program, e.ExitCode)
}

// Is reports whether target matches this error type
func (e *SubprocessError) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && t.Kind == KindSubprocess
	}
	_, ok := target.(*SubprocessError)
	return ok
}

// MissingDefinition represents a single unresolved key
type MissingDefinition struct {
	Namespace string // "import" or "embed"
	Module    string
	Name      string
}

// MissingDefinitionsError is returned when resolution finishes with keys that
// were needed but never defined by any input.
type MissingDefinitionsError struct {
	Missing []MissingDefinition
}

// NewMissingDefinitionsError creates an error from the unmet keys. Keys are
// sorted so the report does not depend on map iteration order.
func NewMissingDefinitionsError(missing []MissingDefinition) *MissingDefinitionsError {
	sorted := append([]MissingDefinition(nil), missing...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Name < b.Name
	})
	return &MissingDefinitionsError{Missing: sorted}
}

func (e *MissingDefinitionsError) Error() string {
	if len(e.Missing) == 0 {
		return "[resolve] missing_definition: no keys specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[resolve] missing_definition: missing %d JS definition(s):\n", len(e.Missing))

	// Group by namespace and module for cleaner output
	type group struct{ namespace, module string }
	byGroup := make(map[group][]string)
	var order []group
	for _, m := range e.Missing {
		g := group{m.Namespace, m.Module}
		if _, exists := byGroup[g]; !exists {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], m.Name)
	}

	for _, g := range order {
		b.WriteString("\n  JS ")
		b.WriteString(g.namespace)
		b.WriteString(" `")
		b.WriteString(g.module)
		b.WriteString("`:\n")
		for _, name := range byGroup[g] {
			b.WriteString("    - ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingDefinitionsError) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseResolve && t.Kind == KindMissingDefinition
	}
	_, ok := target.(*MissingDefinitionsError)
	return ok
}
