// Package errors provides structured error types for the linker.
//
// Errors are categorized by Phase (which pipeline stage failed) and Kind
// (error category). Every failure in this tool is fatal: the error travels up
// to the command and becomes the process exit status.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseScan, errors.KindInvalidData).
//		Path("libfoo.rlib").
//		Detail("archive member %q is truncated", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.VersionSkew("js_bindgen.import", 12, "length exceeds section")
//	err := errors.DuplicateDefinition("import", "mod", "foo", first, second)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
