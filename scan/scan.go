package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
	"github.com/wippyai/js-bindgen-ld/wasm"
)

// Item is one metadata record found while scanning.
type Item struct {
	Input   string // command-line input the record came from
	Member  string // archive member name, empty for plain objects
	Section string // custom section name
	Record  metadata.Record
	// Seq numbers assembly records per input, starting at 0.
	Seq int
}

// Source returns a readable location of the item.
func (it Item) Source() string {
	if it.Member == "" {
		return it.Input
	}
	return it.Input + "(" + it.Member + ")"
}

// AsmPath is the object file path derived for an assembly record.
func (it Item) AsmPath() string {
	return AsmPath(it.Input, it.Seq)
}

// AsmPath derives the object path of the seq-th assembly unit of input.
func AsmPath(input string, seq int) string {
	return fmt.Sprintf("%s.asm.%d.o", input, seq)
}

// Visitor receives every metadata record in scan order.
type Visitor func(Item) error

// Stats counts what a scan touched.
type Stats struct {
	Inputs   int
	Members  int
	Modules  int
	Skipped  int
	Sections int
	Records  int
}

// Scanner walks linker inputs and decodes their metadata sections.
type Scanner struct {
	names metadata.Names
	stats Stats
}

// New creates a scanner for the metadata sections named by names.
func New(names metadata.Names) *Scanner {
	return &Scanner{names: names}
}

// Stats returns the counters accumulated so far.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Scan visits the inputs strictly in the given order.
func (s *Scanner) Scan(ctx context.Context, inputs []string, visit Visitor) error {
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ScanFile(input, visit); err != nil {
			return err
		}
	}
	return nil
}

// ScanFile visits one input. Archives are expanded into their members; files
// that are neither archives nor modules are skipped.
func (s *Scanner) ScanFile(input string, visit Visitor) error {
	if !candidate(input) {
		Logger().Debug("skipping input", zap.String("input", input))
		s.stats.Skipped++
		return nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.IO(errors.PhaseScan, input, err)
	}
	s.stats.Inputs++

	seq := 0
	if !IsArchive(data) {
		return s.scanPayload(input, "", data, &seq, visit)
	}

	members, err := readArchive(data)
	if err != nil {
		return errors.New(errors.PhaseScan, errors.KindInvalidData).
			Path(input).
			Detail("failed to parse archive file").
			Cause(err).
			Build()
	}
	for _, m := range members {
		s.stats.Members++
		if err := s.scanPayload(input, m.Name, m.Data, &seq, visit); err != nil {
			return err
		}
	}
	return nil
}

// candidate reports whether input might be an archive or module. Files with
// other extensions are still sniffed, inputs without a known extension may
// come from build systems that rename objects.
func candidate(input string) bool {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".rlib", ".a", ".o", ".wasm", ".obj", "":
		return true
	}
	return sniff(input)
}

func sniff(input string) bool {
	f, err := os.Open(input)
	if err != nil {
		return false
	}
	defer f.Close()

	var head [8]byte
	if n, _ := f.Read(head[:]); n < len(head) {
		return false
	}
	return IsArchive(head[:]) || wasm.IsModule(head[:])
}

func (s *Scanner) scanPayload(input, member string, data []byte, seq *int, visit Visitor) error {
	log := Logger().With(zap.String("input", input))
	if member != "" {
		log = log.With(zap.String("member", member))
	}

	if !wasm.IsModule(data) {
		// e.g. lib.rmeta in rlibs
		log.Debug("skipping non-wasm payload")
		s.stats.Skipped++
		return nil
	}

	sections, err := wasm.ReadSections(data)
	if err != nil {
		return errors.New(errors.PhaseScan, errors.KindInvalidData).
			Path(location(input, member)...).
			Detail("unexpected object file payload").
			Cause(err).
			Build()
	}
	s.stats.Modules++

	for _, sec := range sections {
		if sec.ID != wasm.SectionCustom {
			continue
		}
		cs, err := wasm.ParseCustomSection(sec.Payload)
		if err != nil {
			return errors.New(errors.PhaseScan, errors.KindInvalidData).
				Path(location(input, member)...).
				Detail("invalid custom section at offset %d", sec.Offset).
				Cause(err).
				Build()
		}

		kind := s.names.Kind(cs.Name)
		if kind == metadata.KindNone {
			continue
		}
		s.stats.Sections++

		records, err := metadata.Decode(cs.Name, kind, cs.Data)
		if err != nil {
			if le, ok := err.(*errors.Error); ok {
				le.Path = append(location(input, member), le.Path...)
			}
			return err
		}
		log.Debug("decoded metadata section",
			zap.String("section", cs.Name),
			zap.Int("records", len(records)))

		for _, rec := range records {
			item := Item{Input: input, Member: member, Section: cs.Name, Record: rec}
			if rec.Kind == metadata.KindAssembly {
				item.Seq = *seq
				*seq++
			}
			s.stats.Records++
			if err := visit(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func location(input, member string) []string {
	if member == "" {
		return []string{input}
	}
	return []string{input, member}
}
