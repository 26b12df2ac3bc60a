// Package wasm reads and writes the parts of the WebAssembly core module
// binary format that a post-link rewrite touches.
//
// A module is handled as a flat list of raw sections. Only the import
// section and the "producers" custom section are decoded into structured
// form; every other section is carried through as opaque bytes:
//
//	sections, err := wasm.ReadSections(data)
//	if err != nil {
//	    return err
//	}
//	out := wasm.AppendHeader(nil)
//	for _, s := range sections {
//	    if s.ID == wasm.SectionImport {
//	        imports, _ := wasm.ParseImportSection(s.Payload)
//	        s.Payload = wasm.EncodeImportSection(imports)
//	    }
//	    out = wasm.AppendSection(out, s.ID, s.Payload)
//	}
//
// Component binaries share the magic number but carry a non-zero layer and
// are rejected with ErrComponent.
package wasm
