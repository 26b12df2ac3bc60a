// Package rewrite post-processes the module produced by the backing linker.
//
// The rewritten module differs from its input only in: the import section
// (re-encoded, with the externref table forced to 32-bit indices), custom
// sections under the metadata namespace (dropped) and the producers section
// (this tool appended to processed-by). The main memory import is reported
// as a Memory descriptor instead of as a need.
package rewrite

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
	"github.com/wippyai/js-bindgen-ld/wasm"
)

// ToolName is the name recorded in the producers section.
const ToolName = "js-bindgen"

// Memory describes the main memory import.
type Memory struct {
	Maximum  *uint64
	Initial  uint64
	Shared   bool
	Memory64 bool
}

// Options configures a rewrite.
type Options struct {
	Names      metadata.Names
	MainMemory metadata.Key
	// ExternrefTable is forced to 32-bit indices when declared 64-bit.
	ExternrefTable metadata.Key
	Version        string
}

// Result is the outcome of Rewrite.
type Result struct {
	Module  []byte
	Memory  Memory
	Imports []wasm.Import // every import except the main memory
	Dropped []string      // names of dropped custom sections
}

// Need receives every import that glue must provide.
type Need func(wasm.Import) error

// Rewrite parses the linked module in data and produces the final module.
// need is called for each import in import section order.
func Rewrite(data []byte, opts Options, need Need) (*Result, error) {
	sections, err := wasm.ReadSections(data)
	if err != nil {
		if err == wasm.ErrComponent {
			return nil, errors.Unsupported(errors.PhaseRewrite, "objects with components are not supported")
		}
		return nil, errors.Wrap(errors.PhaseRewrite, errors.KindInvalidData, err, "linked module should be valid Wasm")
	}

	r := &rewriter{opts: opts, need: need, log: Logger()}
	out := wasm.AppendHeader(make([]byte, 0, len(data)))

	for _, sec := range sections {
		payload, keep, err := r.section(sec)
		if err != nil {
			return nil, err
		}
		if keep {
			out = wasm.AppendSection(out, sec.ID, payload)
		}
	}

	if r.memory == nil {
		return nil, errors.New(errors.PhaseRewrite, errors.KindNotFound).
			Path(opts.MainMemory.Module, opts.MainMemory.Name).
			Detail("main memory should be present").
			Build()
	}

	return &Result{
		Module:  out,
		Memory:  *r.memory,
		Imports: r.imports,
		Dropped: r.dropped,
	}, nil
}

type rewriter struct {
	need    Need
	memory  *Memory
	log     *zap.Logger
	opts    Options
	imports []wasm.Import
	dropped []string
}

func (r *rewriter) section(sec wasm.Section) ([]byte, bool, error) {
	switch sec.ID {
	case wasm.SectionImport:
		payload, err := r.importSection(sec.Payload)
		return payload, true, err
	case wasm.SectionCustom:
		return r.customSection(sec)
	default:
		return sec.Payload, true, nil
	}
}

func (r *rewriter) importSection(payload []byte) ([]byte, error) {
	imports, err := wasm.ParseImportSection(payload)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRewrite, errors.KindInvalidData, err, "import should be parsable")
	}

	for i := range imports {
		imp := &imports[i]

		if t := imp.Desc.Table; t != nil && t.Limits.Memory64 &&
			imp.Module == r.opts.ExternrefTable.Module && imp.Name == r.opts.ExternrefTable.Name {
			// The assembler cannot emit 32-bit table accesses on wasm64.
			t.Limits.Memory64 = false
			r.log.Debug("forced externref table to 32-bit",
				zap.String("module", imp.Module), zap.String("name", imp.Name))
		}

		if m := imp.Desc.Memory; m != nil &&
			imp.Module == r.opts.MainMemory.Module && imp.Name == r.opts.MainMemory.Name {
			r.memory = &Memory{
				Initial:  m.Limits.Min,
				Maximum:  m.Limits.Max,
				Shared:   m.Limits.Shared,
				Memory64: m.Limits.Memory64,
			}
			continue
		}

		r.imports = append(r.imports, *imp)
		if r.need != nil {
			if err := r.need(*imp); err != nil {
				return nil, err
			}
		}
	}

	return wasm.EncodeImportSection(imports), nil
}

func (r *rewriter) customSection(sec wasm.Section) ([]byte, bool, error) {
	cs, err := wasm.ParseCustomSection(sec.Payload)
	if err != nil {
		return nil, false, errors.Wrap(errors.PhaseRewrite, errors.KindInvalidData, err,
			fmt.Sprintf("custom section at offset %d", sec.Offset))
	}

	if r.opts.Names.Internal(cs.Name) {
		r.dropped = append(r.dropped, cs.Name)
		return nil, false, nil
	}

	if cs.Name != wasm.CustomProducers {
		return sec.Payload, true, nil
	}

	fields, err := wasm.ParseProducers(cs.Data)
	if err != nil {
		return nil, false, errors.Wrap(errors.PhaseRewrite, errors.KindInvalidData, err,
			"unexpected producer section encoding")
	}
	for i := range fields {
		if fields[i].Name == wasm.ProducersProcessedBy {
			fields[i].Values = append(fields[i].Values, wasm.ProducerValue{Name: ToolName, Version: r.opts.Version})
		}
	}
	cs.Data = wasm.EncodeProducers(fields)
	return wasm.EncodeCustomSection(cs), true, nil
}
