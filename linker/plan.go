package linker

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/ldargs"
	"github.com/wippyai/js-bindgen-ld/metadata"
)

// Target architectures accepted by -m.
const (
	ArchWasm32 = "wasm32"
	ArchWasm64 = "wasm64"
)

// Plan is what the pipeline needs to know about a link before running it.
type Plan struct {
	Invocation *ldargs.Invocation
	Output     string
	Arch       string
	// MainMemory is the import the linked module receives its memory under.
	MainMemory metadata.Key
	// Extra holds arguments the pipeline adds to the linker command line.
	Extra []string
}

// NewPlan interprets the options that matter to the pipeline. Everything else
// is passed through untouched.
func NewPlan(inv *ldargs.Invocation, names metadata.Names) (*Plan, error) {
	flavor, _, err := inv.Single("flavor")
	if err != nil {
		return nil, err
	}
	if flavor != "wasm" {
		return nil, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Path("flavor").
			Value(flavor).
			Detail("js-bindgen-ld should only be used when compiling to a Wasm target").
			Build()
	}

	output, ok, err := inv.Single("o")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseArgs, "output path argument should be present")
	}

	// rustc passes nothing for wasm32 and -mwasm64 for wasm64.
	arch, ok, err := inv.Single("m")
	if err != nil {
		return nil, err
	}
	switch {
	case !ok:
		arch = ArchWasm32
	case arch != ArchWasm32 && arch != ArchWasm64:
		return nil, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Path("m").
			Value(arch).
			Detail("expected `-m` to either be `wasm32` or `wasm64`").
			Build()
	}

	p := &Plan{Invocation: inv, Output: output, Arch: arch}
	if err := p.mainMemory(names.Namespace); err != nil {
		return nil, err
	}
	return p, nil
}

// mainMemory takes the user's --import-memory choice or forces an import
// under the metadata namespace.
func (p *Plan) mainMemory(namespace string) error {
	value, ok, err := p.Invocation.Single("import-memory=")
	if err != nil {
		return err
	}
	if ok {
		module, name, _ := strings.Cut(value, ",")
		p.MainMemory = metadata.Key{Module: module, Name: name}
		return nil
	}

	bare, err := p.Invocation.Flag("import-memory")
	if err != nil {
		return err
	}
	if bare {
		Logger().Warn("found `--import-memory`, the main memory is already imported by default",
			zap.String("default", namespace+":memory"))
		p.MainMemory = metadata.Key{Module: "env", Name: "memory"}
		return nil
	}

	p.MainMemory = metadata.Key{Module: namespace, Name: "memory"}
	p.Extra = append(p.Extra, "--import-memory="+namespace+",memory")
	return nil
}
