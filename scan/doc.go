// Package scan walks linker inputs in command-line order and yields the
// metadata records found in their custom sections.
//
// Static archives (.rlib, .a, or anything starting with the archive magic)
// are expanded member by member in archive order. Members and files that are
// not core wasm modules, such as rlib metadata, are skipped.
package scan
