package metadata

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	lderrors "github.com/wippyai/js-bindgen-ld/errors"
)

func TestNames(t *testing.T) {
	n := NewNames("")
	if n.Namespace != DefaultNamespace {
		t.Errorf("Namespace = %q", n.Namespace)
	}

	tests := []struct {
		section  string
		kind     Kind
		internal bool
	}{
		{"js_bindgen.assembly", KindAssembly, true},
		{"js_bindgen.import", KindImport, true},
		{"js_bindgen.embed", KindEmbed, true},
		{"js_bindgen.other", KindNone, true},
		{"js_bindgen", KindNone, false},
		{"producers", KindNone, false},
		{"js_bindgenx.import", KindNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			if got := n.Kind(tt.section); got != tt.kind {
				t.Errorf("Kind = %s, want %s", got, tt.kind)
			}
			if got := n.Internal(tt.section); got != tt.internal {
				t.Errorf("Internal = %v, want %v", got, tt.internal)
			}
		})
	}

	custom := NewNames("my_ns")
	if custom.Kind("my_ns.embed") != KindEmbed || custom.Kind("js_bindgen.embed") != KindNone {
		t.Error("custom namespace not honored")
	}
}

func TestBlocks(t *testing.T) {
	data := EncodeBlocks([]byte("abc"), nil, []byte("de"))
	want := []byte{3, 0, 0, 0, 'a', 'b', 'c', 0, 0, 0, 0, 2, 0, 0, 0, 'd', 'e'}
	if !bytes.Equal(data, want) {
		t.Fatalf("EncodeBlocks = %v", data)
	}

	blocks, err := DecodeBlocks("s", data)
	if err != nil {
		t.Fatalf("DecodeBlocks: %v", err)
	}
	if len(blocks) != 3 || string(blocks[0]) != "abc" || len(blocks[1]) != 0 || string(blocks[2]) != "de" {
		t.Errorf("blocks = %q", blocks)
	}

	if blocks, err := DecodeBlocks("s", nil); err != nil || len(blocks) != 0 {
		t.Errorf("empty section: %v, %v", blocks, err)
	}
}

func TestDecodeBlocksErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"length past end", []byte{5, 0, 0, 0, 'a'}},
		{"left over bytes", []byte{1, 0, 0, 0, 'a', 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBlocks("js_bindgen.import", tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			var le *lderrors.Error
			if !errors.As(err, &le) || le.Kind != lderrors.KindVersionSkew {
				t.Errorf("expected version skew error, got %v", err)
			}
		})
	}
}

func TestSnippetRoundTrip(t *testing.T) {
	tests := []Snippet{
		{Key: Key{"mod", "foo"}, JS: "() => 1"},
		{Key: Key{"mod", "bar"}},
		{Key: Key{"js_sys", "string.decode"}, JS: "(ptr, len) => {\n\treturn decode(ptr, len);\n}",
			Requires: []Key{{"js_sys", "decoder"}, {"web", "utf8"}}},
	}
	for _, s := range tests {
		t.Run(s.String(), func(t *testing.T) {
			got, err := DecodeSnippet("sec", EncodeSnippet(s))
			if err != nil {
				t.Fatalf("DecodeSnippet: %v", err)
			}
			if !reflect.DeepEqual(*got, s) {
				t.Errorf("got %+v, want %+v", *got, s)
			}
		})
	}
}

func TestDecodeSnippetTruncated(t *testing.T) {
	full := EncodeSnippet(Snippet{Key: Key{"mod", "foo"}, Requires: []Key{{"a", "b"}}})
	// Cut inside the required list; the snippet text starts after it.
	for _, n := range []int{0, 1, 4, 9, 10, 12, 14} {
		if _, err := DecodeSnippet("sec", full[:n]); !errors.Is(err, &lderrors.Error{Phase: lderrors.PhaseDecode, Kind: lderrors.KindVersionSkew}) {
			t.Errorf("truncated at %d: got %v", n, err)
		}
	}
}

func TestDecode(t *testing.T) {
	n := NewNames("")

	asm := EncodeBlocks([]byte("nop"), nil, []byte("end"))
	records, err := Decode(n.Assembly, KindAssembly, asm)
	if err != nil {
		t.Fatalf("Decode assembly: %v", err)
	}
	if len(records) != 2 || string(records[0].Assembly) != "nop" || string(records[1].Assembly) != "end" {
		t.Errorf("assembly records = %+v", records)
	}

	imports := EncodeBlocks(
		EncodeSnippet(Snippet{Key: Key{"mod", "a"}, JS: "x"}),
		EncodeSnippet(Snippet{Key: Key{"mod", "b"}}),
	)
	records, err = Decode(n.Import, KindImport, imports)
	if err != nil {
		t.Fatalf("Decode import: %v", err)
	}
	if len(records) != 2 || records[0].Snippet.Name != "a" || records[1].Snippet.JS != "" {
		t.Errorf("import records = %+v", records)
	}
	for _, r := range records {
		if r.Kind != KindImport {
			t.Errorf("record kind = %s", r.Kind)
		}
	}
}

func TestDecodeEmptyEmbed(t *testing.T) {
	data := EncodeBlocks(EncodeSnippet(Snippet{Key: Key{"mod", "a"}}))
	_, err := Decode("js_bindgen.embed", KindEmbed, data)
	var le *lderrors.Error
	if !errors.As(err, &le) || le.Kind != lderrors.KindVersionSkew {
		t.Fatalf("expected version skew, got %v", err)
	}
}

func TestDecodeNotMetadata(t *testing.T) {
	if _, err := Decode("producers", KindNone, EncodeBlocks([]byte("x"))); err == nil {
		t.Error("expected error for non-metadata kind")
	}
}
