package wasm

import (
	"github.com/wippyai/js-bindgen-ld/internal/binary"
)

// AppendHeader appends the core module preamble to dst.
func AppendHeader(dst []byte) []byte {
	return append(dst, Header[:]...)
}

// AppendSection appends a section with the given id and payload to dst.
func AppendSection(dst []byte, id byte, payload []byte) []byte {
	w := binary.NewWriter()
	writeSection(w, id, payload)
	return append(dst, w.Bytes()...)
}

// EncodeImportSection encodes imports as an import section payload.
func EncodeImportSection(imports []Import) []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(imports)))
	for _, imp := range imports {
		writeImport(w, imp)
	}
	return w.Bytes()
}

// EncodeCustomSection encodes a custom section payload.
func EncodeCustomSection(cs CustomSection) []byte {
	w := binary.NewWriter()
	w.WriteName(cs.Name)
	w.WriteBytes(cs.Data)
	return w.Bytes()
}

// EncodeProducers encodes fields as the data of a "producers" custom section.
func EncodeProducers(fields []ProducersField) []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(fields)))
	for _, f := range fields {
		w.WriteName(f.Name)
		w.WriteU32(uint32(len(f.Values)))
		for _, v := range f.Values {
			w.WriteName(v.Name)
			w.WriteName(v.Version)
		}
	}
	return w.Bytes()
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeImport(w *binary.Writer, imp Import) {
	w.WriteName(imp.Module)
	w.WriteName(imp.Name)
	w.Byte(imp.Desc.Kind)
	switch imp.Desc.Kind {
	case KindFunc:
		w.WriteU32(imp.Desc.TypeIdx)
	case KindTable:
		if imp.Desc.Table != nil {
			writeTableType(w, *imp.Desc.Table)
		}
	case KindMemory:
		if imp.Desc.Memory != nil {
			writeLimits(w, imp.Desc.Memory.Limits)
		}
	case KindGlobal:
		if imp.Desc.Global != nil {
			writeGlobalType(w, *imp.Desc.Global)
		}
	case KindTag:
		if imp.Desc.Tag != nil {
			w.Byte(imp.Desc.Tag.Attribute)
			w.WriteU32(imp.Desc.Tag.TypeIdx)
		}
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)

	if l.Memory64 {
		w.WriteU64(l.Min)
		if l.Max != nil {
			w.WriteU64(*l.Max)
		}
	} else {
		w.WriteU32(uint32(l.Min))
		if l.Max != nil {
			w.WriteU32(uint32(*l.Max))
		}
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	writeRefType(w, t.ElemType, t.RefElemType)
	writeLimits(w, t.Limits)
}

func writeRefType(w *binary.Writer, b byte, ref *RefType) {
	if ref == nil {
		w.Byte(b)
		return
	}
	if ref.Nullable {
		w.Byte(byte(ValRefNull))
	} else {
		w.Byte(byte(ValRef))
	}
	w.WriteS64(ref.HeapType)
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	writeRefType(w, byte(g.ValType), g.RefType)
	if g.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}
