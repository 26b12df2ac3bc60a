// Package jsbindgenld links WebAssembly objects that carry JS bindings into a
// single module plus the JS glue that instantiates it.
//
// Producers emit ordinary object and archive files whose custom sections
// additionally hold assembly text and named JS snippets. The linker wrapper
// compiles the assembly, runs the backing wasm linker and then matches every
// import of the linked module against the collected snippets.
//
// # Architecture Overview
//
//	jsbindgenld/         Root package (documentation only)
//	├── cmd/js-bindgen-ld/ The linker executable
//	├── linker/          Pipeline: plan, pre-link, link, post-link
//	├── ldargs/          wasm-ld command line parsing and response files
//	├── scan/            Archive and object scanning for metadata sections
//	├── metadata/        Metadata section wire format
//	├── assembler/       Cached assembly to object compilation
//	├── rewrite/         Linked module rewriting and verification
//	├── resolve/         Import and embed resolution store
//	├── glue/            JS glue template rendering
//	├── config/          Startup configuration
//	├── diag/            Subprocess diagnostic dumps
//	├── wasm/            Core WASM binary primitives
//	└── errors/          Structured error types
//
// # Usage
//
// Configure the executable as the linker of a Wasm target. It accepts the
// wasm-ld command line unchanged:
//
//	js-bindgen-ld -flavor wasm -o target/app.wasm main.o libdep.rlib
//
// On success target/app.wasm is rewritten in place and target/app.mjs holds
// the glue. When CARGO_CRATE_NAME is set the glue is also copied to
// <crate>.mjs next to the output.
//
// # Metadata Sections
//
// Three custom sections are read, named after a configurable namespace
// (js_bindgen by default):
//
//   - js_bindgen.assembly: assembly text, one block per unit
//   - js_bindgen.import: JS satisfying an import of the linked module
//   - js_bindgen.embed: JS looked up by name at runtime
//
// Snippets may require embeds. Resolution is order independent: the same
// inputs in any order produce byte-identical glue.
//
// # Failure Model
//
// Every failure is fatal. Malformed metadata, duplicate or missing
// definitions and failing subprocesses all stop the link with a structured
// error; the exit status of a failed subprocess is propagated.
package jsbindgenld
