package linker

import (
	"errors"
	"reflect"
	"testing"

	lderrors "github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/ldargs"
	"github.com/wippyai/js-bindgen-ld/metadata"
)

func newPlan(t *testing.T, argv ...string) (*Plan, error) {
	t.Helper()
	inv, err := ldargs.Parse(argv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return NewPlan(inv, names)
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		arch   string
		memory metadata.Key
		extra  []string
	}{
		{
			name:   "defaults",
			argv:   []string{"-flavor", "wasm", "-o", "out.wasm", "a.o"},
			arch:   ArchWasm32,
			memory: metadata.Key{Module: "js_bindgen", Name: "memory"},
			extra:  []string{"--import-memory=js_bindgen,memory"},
		},
		{
			name:   "wasm64 joined",
			argv:   []string{"-flavor", "wasm", "-mwasm64", "-oout.wasm"},
			arch:   ArchWasm64,
			memory: metadata.Key{Module: "js_bindgen", Name: "memory"},
			extra:  []string{"--import-memory=js_bindgen,memory"},
		},
		{
			name:   "explicit import memory",
			argv:   []string{"-flavor", "wasm", "-o", "out.wasm", "--import-memory=host,mem"},
			arch:   ArchWasm32,
			memory: metadata.Key{Module: "host", Name: "mem"},
		},
		{
			name:   "import memory without name",
			argv:   []string{"-flavor", "wasm", "-o", "out.wasm", "--import-memory=host"},
			arch:   ArchWasm32,
			memory: metadata.Key{Module: "host"},
		},
		{
			name:   "bare import memory",
			argv:   []string{"-flavor", "wasm", "-o", "out.wasm", "--import-memory"},
			arch:   ArchWasm32,
			memory: metadata.Key{Module: "env", Name: "memory"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newPlan(t, tt.argv...)
			if err != nil {
				t.Fatal(err)
			}
			if p.Output != "out.wasm" || p.Arch != tt.arch {
				t.Errorf("output %q arch %q", p.Output, p.Arch)
			}
			if p.MainMemory != tt.memory {
				t.Errorf("main memory = %v, want %v", p.MainMemory, tt.memory)
			}
			if !reflect.DeepEqual(p.Extra, tt.extra) {
				t.Errorf("extra = %v, want %v", p.Extra, tt.extra)
			}
		})
	}
}

func TestNewPlanCustomNamespace(t *testing.T) {
	inv, err := ldargs.Parse([]string{"-flavor", "wasm", "-o", "out.wasm"})
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPlan(inv, metadata.NewNames("glue"))
	if err != nil {
		t.Fatal(err)
	}
	if p.MainMemory.Module != "glue" || p.Extra[0] != "--import-memory=glue,memory" {
		t.Errorf("got %+v", p)
	}
}

func TestNewPlanErrors(t *testing.T) {
	tests := map[string][]string{
		"no flavor":    {"-o", "out.wasm"},
		"wrong flavor": {"-flavor", "gnu", "-o", "out.wasm"},
		"no output":    {"-flavor", "wasm", "a.o"},
		"two outputs":  {"-flavor", "wasm", "-o", "a.wasm", "-o", "b.wasm"},
		"bad arch":     {"-flavor", "wasm", "-o", "out.wasm", "-m", "x86_64"},
		"two memories": {"-flavor", "wasm", "-o", "out.wasm", "--import-memory=a,b", "--import-memory=c,d"},
	}
	for name, argv := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newPlan(t, argv...)
			if !errors.Is(err, &lderrors.Error{Phase: lderrors.PhaseArgs, Kind: lderrors.KindInvalidInput}) {
				t.Errorf("expected args error, got %v", err)
			}
		})
	}
}
