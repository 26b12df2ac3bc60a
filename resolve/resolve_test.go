package resolve

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	lderrors "github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
)

func k(module, name string) metadata.Key {
	return metadata.Key{Module: module, Name: name}
}

func snip(module, name, js string, requires ...metadata.Key) *metadata.Snippet {
	return &metadata.Snippet{Key: k(module, name), JS: js, Requires: requires}
}

type op struct {
	snippet *metadata.Snippet
	need    metadata.Key
	ns      Namespace
	define  bool
}

func need(ns Namespace, key metadata.Key) op { return op{ns: ns, need: key} }
func define(ns Namespace, s *metadata.Snippet) op {
	return op{ns: ns, snippet: s, define: true}
}

func apply(s *Store, ops []op) error {
	for _, o := range ops {
		var err error
		if o.define {
			err = s.Define(o.ns, o.snippet)
		} else {
			err = s.Need(o.ns, o.need)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func permutations(ops []op) [][]op {
	if len(ops) <= 1 {
		return [][]op{append([]op(nil), ops...)}
	}
	var out [][]op
	for i := range ops {
		rest := make([]op, 0, len(ops)-1)
		rest = append(rest, ops[:i]...)
		rest = append(rest, ops[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]op{ops[i]}, p...))
		}
	}
	return out
}

func TestResolutionIsOrderIndependent(t *testing.T) {
	ops := []op{
		need(Import, k("mod", "foo")),
		need(Import, k("mod", "linked")),
		define(Import, snip("mod", "foo", "(x) => helper(x)", k("mod", "helper"))),
		define(Import, snip("mod", "linked", "")),
		define(Embed, snip("mod", "helper", "(x) => {\n\treturn dep(x);\n}", k("util", "dep"))),
		define(Embed, snip("util", "dep", "(x) => x")),
		define(Embed, snip("util", "unused", "() => 0")),
	}

	var first *Tables
	for i, perm := range permutations(ops) {
		s := New()
		if err := apply(s, perm); err != nil {
			t.Fatalf("permutation %d: %v", i, err)
		}
		tables, err := s.Finalize()
		if err != nil {
			t.Fatalf("permutation %d: Finalize: %v", i, err)
		}
		if first == nil {
			first = tables
			continue
		}
		if !reflect.DeepEqual(tables, first) {
			t.Fatalf("permutation %d: tables differ\n got %v\nwant %v", i, tables, first)
		}
	}

	if got := first.Imports["mod"]; len(got) != 2 || got["linked"] != "" || got["foo"] != "(x) => helper(x)" {
		t.Errorf("imports = %v", first.Imports)
	}
	if first.Embeds.Len() != 2 {
		t.Errorf("embeds = %v", first.Embeds)
	}
	if _, ok := first.Embeds["util"]["unused"]; ok {
		t.Error("unneeded embed was resolved")
	}
}

func TestDuplicateDefinition(t *testing.T) {
	a := snip("mod", "foo", "first")
	b := snip("mod", "foo", "second")

	orders := map[string][]op{
		"both before need":  {define(Import, a), define(Import, b), need(Import, k("mod", "foo"))},
		"need in between":   {define(Import, a), need(Import, k("mod", "foo")), define(Import, b)},
		"need before both":  {need(Import, k("mod", "foo")), define(Import, a), define(Import, b)},
		"embed unclaimed":   {define(Embed, a), define(Embed, b)},
	}
	for name, ops := range orders {
		t.Run(name, func(t *testing.T) {
			err := apply(New(), ops)
			var le *lderrors.Error
			if !errors.As(err, &le) || le.Kind != lderrors.KindDuplicateDefinition {
				t.Fatalf("expected duplicate definition, got %v", err)
			}
			if !strings.Contains(le.Detail, "first") || !strings.Contains(le.Detail, "second") {
				t.Errorf("detail does not show both snippets: %s", le.Detail)
			}
		})
	}
}

func TestMissingDefinitions(t *testing.T) {
	s := New()
	if err := apply(s, []op{
		need(Import, k("mod", "foo")),
		define(Import, snip("mod", "foo", "js", k("mod", "nowhere"))),
		need(Import, k("env", "absent")),
	}); err != nil {
		t.Fatal(err)
	}

	_, err := s.Finalize()
	var me *lderrors.MissingDefinitionsError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingDefinitionsError, got %v", err)
	}
	want := []lderrors.MissingDefinition{
		{Namespace: "embed", Module: "mod", Name: "nowhere"},
		{Namespace: "import", Module: "env", Name: "absent"},
	}
	if !reflect.DeepEqual(me.Missing, want) {
		t.Errorf("missing = %+v", me.Missing)
	}
	if !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("message = %s", err)
	}

	if err := s.Need(Import, k("late", "x")); err == nil {
		t.Error("store accepted a need after Finalize")
	}
}

func TestDuplicateImportNeed(t *testing.T) {
	s := New()
	if err := s.Need(Import, k("mod", "foo")); err != nil {
		t.Fatal(err)
	}
	if err := s.Need(Import, k("mod", "foo")); err == nil {
		t.Error("expected duplicate import error")
	}

	// Embeds may be needed by many snippets.
	for i := 0; i < 3; i++ {
		if err := s.Need(Embed, k("mod", "shared")); err != nil {
			t.Errorf("embed need %d: %v", i, err)
		}
	}
}

func TestStates(t *testing.T) {
	s := New()
	key := k("mod", "foo")
	if s.State(Import, key) != Unseen {
		t.Error("want unseen")
	}
	_ = s.Define(Import, snip("mod", "foo", "js"))
	if s.State(Import, key) != Provided {
		t.Error("want provided")
	}
	if s.State(Embed, key) != Unseen {
		t.Error("namespaces must be independent")
	}
	_ = s.Need(Import, key)
	if s.State(Import, key) != Resolved {
		t.Errorf("want resolved, got %s", s.State(Import, key))
	}
}

func TestEmbedCycle(t *testing.T) {
	ops := []op{
		need(Import, k("mod", "entry")),
		define(Import, snip("mod", "entry", "e", k("mod", "a"))),
		define(Embed, snip("mod", "a", "a", k("mod", "b"))),
		define(Embed, snip("mod", "b", "b", k("mod", "a"))),
	}
	for i, perm := range permutations(ops) {
		s := New()
		if err := apply(s, perm); err != nil {
			t.Fatalf("permutation %d: %v", i, err)
		}
		_, err := s.Finalize()
		var le *lderrors.Error
		if !errors.As(err, &le) || le.Kind != lderrors.KindCycle {
			t.Fatalf("permutation %d: expected cycle error, got %v", i, err)
		}
		if !strings.Contains(le.Detail, "`mod:a` -> `mod:b` -> `mod:a`") {
			t.Errorf("permutation %d: detail = %s", i, le.Detail)
		}
	}
}

func TestTableOrder(t *testing.T) {
	table := Table{
		"b": {"z": "", "a": ""},
		"a": {"y": ""},
	}
	if got := table.Modules(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Modules = %v", got)
	}
	if got := table.Names("b"); !reflect.DeepEqual(got, []string{"a", "z"}) {
		t.Errorf("Names = %v", got)
	}
	if table.Len() != 3 {
		t.Errorf("Len = %d", table.Len())
	}
}
