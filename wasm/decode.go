package wasm

import (
	"errors"
	"fmt"

	"github.com/wippyai/js-bindgen-ld/internal/binary"
)

// Parsing errors returned by ReadSections.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
	ErrComponent      = errors.New("binary is a component, not a core module")
)

// IsModule reports whether data starts with a core module header.
func IsModule(data []byte) bool {
	return len(data) >= len(Header) && [8]byte(data[:8]) == Header
}

// ReadSections splits a module binary into its sections in file order.
// Section payloads alias data.
func ReadSections(data []byte) ([]Section, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	layer, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if layer != LayerModule {
		return nil, ErrComponent
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	var sections []Section

	// Track section ordering using canonical order, not section IDs
	var lastSectionOrder int

	for r.Len() > 0 {
		offset := r.Position()
		sectionID, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("section header", err)
		}

		// Validate section ordering (custom sections can appear anywhere)
		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, r.WrapError("section header", fmt.Errorf("unknown section ID: 0x%02x", sectionID))
			}
			if order <= lastSectionOrder {
				return nil, r.WrapError("section header", fmt.Errorf("section %d appears out of order", sectionID))
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}

		payload, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		sections = append(sections, Section{ID: sectionID, Offset: offset, Payload: payload})
	}

	return sections, nil
}

// sectionOrder returns the canonical ordering for a section ID.
// WASM spec requires sections in specific order, which differs from section IDs.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6 // Tag comes after Memory, before Global
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11 // DataCount must come before Code
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

// ParseCustomSection splits a custom section payload into its name and data.
func ParseCustomSection(payload []byte) (CustomSection, error) {
	r := binary.NewReader(payload)
	name, err := r.ReadName()
	if err != nil {
		return CustomSection{}, r.WrapError("custom section", err)
	}
	return CustomSection{Name: name, Data: r.ReadRemaining()}, nil
}

// ParseImportSection decodes every entry of an import section payload.
func ParseImportSection(payload []byte) ([]Import, error) {
	r := binary.NewReader(payload)

	count, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("import section", err)
	}

	// Each entry is at least 4 bytes, bound the allocation by the payload.
	if int(count) > len(payload) {
		return nil, r.WrapError("import section", fmt.Errorf("import count %d exceeds section size", count))
	}

	imports := make([]Import, count)
	for i := uint32(0); i < count; i++ {
		imp, err := readImport(r)
		if err != nil {
			return nil, r.WrapError("import section", fmt.Errorf("import %d: %w", i, err))
		}
		imports[i] = imp
	}

	if r.Len() != 0 {
		return nil, r.WrapError("import section", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return imports, nil
}

func readImport(r *binary.Reader) (Import, error) {
	module, err := r.ReadName()
	if err != nil {
		return Import{}, err
	}
	name, err := r.ReadName()
	if err != nil {
		return Import{}, err
	}
	kind, err := r.ReadByte()
	if err != nil {
		return Import{}, err
	}

	imp := Import{Module: module, Name: name, Desc: ImportDesc{Kind: kind}}

	switch kind {
	case KindFunc:
		imp.Desc.TypeIdx, err = r.ReadU32()
		if err != nil {
			return Import{}, err
		}
	case KindTable:
		table, err := readTableType(r)
		if err != nil {
			return Import{}, err
		}
		imp.Desc.Table = &table
	case KindMemory:
		memory, err := readMemoryType(r)
		if err != nil {
			return Import{}, err
		}
		imp.Desc.Memory = &memory
	case KindGlobal:
		global, err := readGlobalType(r)
		if err != nil {
			return Import{}, err
		}
		imp.Desc.Global = &global
	case KindTag:
		tag, err := readTagType(r)
		if err != nil {
			return Import{}, err
		}
		imp.Desc.Tag = &tag
	default:
		return Import{}, fmt.Errorf("unknown import kind: %d", kind)
	}

	return imp, nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags&^limitsKnown != 0 {
		return Limits{}, fmt.Errorf("unsupported limits flags 0x%02x", flags)
	}

	memory64 := flags&LimitsMemory64 != 0
	l := Limits{
		Shared:   flags&LimitsShared != 0,
		Memory64: memory64,
	}

	if memory64 {
		l.Min, err = r.ReadU64()
		if err != nil {
			return Limits{}, err
		}
		if flags&LimitsHasMax != 0 {
			maxVal, err := r.ReadU64()
			if err != nil {
				return Limits{}, err
			}
			l.Max = &maxVal
		}
	} else {
		minVal, err := r.ReadU32()
		if err != nil {
			return Limits{}, err
		}
		l.Min = uint64(minVal)
		if flags&LimitsHasMax != 0 {
			maxVal, err := r.ReadU32()
			if err != nil {
				return Limits{}, err
			}
			max64 := uint64(maxVal)
			l.Max = &max64
		}
	}

	// Validate min <= max
	if l.Max != nil && l.Min > *l.Max {
		return Limits{}, fmt.Errorf("limits min (%d) exceeds max (%d)", l.Min, *l.Max)
	}

	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	elemType, refElemType, err := readRefType(r)
	if err != nil {
		return TableType{}, err
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elemType, Limits: limits, RefElemType: refElemType}, nil
}

// readRefType reads a reference type that may be 0x63/0x64 with heap type
func readRefType(r *binary.Reader) (byte, *RefType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	if b == byte(ValRefNull) || b == byte(ValRef) {
		heapType, err := r.ReadS64()
		if err != nil {
			return 0, nil, err
		}
		return b, &RefType{Nullable: b == byte(ValRefNull), HeapType: heapType}, nil
	}
	return b, nil, nil
}

func readMemoryType(r *binary.Reader) (MemoryType, error) {
	limits, err := readLimits(r)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	valType, refType, err := readRefType(r)
	if err != nil {
		return GlobalType{}, err
	}
	gt := GlobalType{ValType: ValType(valType), RefType: refType}

	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, fmt.Errorf("invalid global mutability 0x%02x", mut)
	}
	gt.Mutable = mut == 1
	return gt, nil
}

func readTagType(r *binary.Reader) (TagType, error) {
	attribute, err := r.ReadByte()
	if err != nil {
		return TagType{}, err
	}
	typeIdx, err := r.ReadU32()
	if err != nil {
		return TagType{}, err
	}
	return TagType{Attribute: attribute, TypeIdx: typeIdx}, nil
}

// ParseProducers decodes the data of a "producers" custom section.
func ParseProducers(data []byte) ([]ProducersField, error) {
	r := binary.NewReader(data)

	count, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("producers section", err)
	}
	if int(count) > len(data) {
		return nil, r.WrapError("producers section", fmt.Errorf("field count %d exceeds section size", count))
	}

	fields := make([]ProducersField, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, r.WrapError("producers field", err)
		}
		valueCount, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("producers field", err)
		}
		if int(valueCount) > r.Len() {
			return nil, r.WrapError("producers field", fmt.Errorf("value count %d exceeds section size", valueCount))
		}

		field := ProducersField{Name: name, Values: make([]ProducerValue, 0, valueCount)}
		for j := uint32(0); j < valueCount; j++ {
			valueName, err := r.ReadName()
			if err != nil {
				return nil, r.WrapError("producers value", err)
			}
			version, err := r.ReadName()
			if err != nil {
				return nil, r.WrapError("producers value", err)
			}
			field.Values = append(field.Values, ProducerValue{Name: valueName, Version: version})
		}
		fields = append(fields, field)
	}

	if r.Len() != 0 {
		return nil, r.WrapError("producers section", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return fields, nil
}
