// Package linker runs one link end to end.
//
// # Pipeline
//
//  1. Plan: interpret -flavor, -o, -m and --import-memory from the wasm-ld
//     command line.
//  2. Pre-link: scan inputs in command-line order, compile embedded
//     assembly and collect snippet definitions.
//  3. Link: run the backing linker with the original arguments plus the
//     compiled objects.
//  4. Post-link: rewrite the linked module, resolve its imports against the
//     collected snippets and write the module and its glue.
//
// Every failure is fatal and returned as a structured error. A failed
// backing linker surfaces as *errors.SubprocessError carrying its exit code.
//
// # Example
//
//	l := linker.New(linker.Options{Config: cfg, Version: "0.1.0"})
//	res, err := l.Run(ctx, os.Args[1:])
package linker
