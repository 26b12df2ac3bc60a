package resolve

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
)

// Namespace separates imports required by the module from embeds required
// by snippets.
type Namespace uint8

const (
	Import Namespace = iota
	Embed
)

func (ns Namespace) String() string {
	if ns == Embed {
		return "embed"
	}
	return "import"
}

// State is the resolution state of one key.
type State uint8

const (
	Unseen State = iota
	Expected
	Provided
	Resolved
)

func (s State) String() string {
	switch s {
	case Expected:
		return "expected"
	case Provided:
		return "provided"
	case Resolved:
		return "resolved"
	default:
		return "unseen"
	}
}

type key struct {
	metadata.Key
	ns Namespace
}

type entry struct {
	snippet *metadata.Snippet
	state   State
}

// Store reconciles needs and definitions arriving in any order. A definition
// may come before or after its first need; both orders end in the same
// Tables.
type Store struct {
	entries   map[key]*entry
	imports   Table
	embeds    Table
	finalized bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[key]*entry),
		imports: make(Table),
		embeds:  make(Table),
	}
}

// State returns the current state of a key.
func (s *Store) State(ns Namespace, k metadata.Key) State {
	if e, ok := s.entries[key{k, ns}]; ok {
		return e.state
	}
	return Unseen
}

// Need records that k must be defined. A provided definition is claimed
// immediately together with everything it requires.
func (s *Store) Need(ns Namespace, k metadata.Key) error {
	if s.finalized {
		return errors.Internal(errors.PhaseResolve, "store is finalized", nil)
	}

	kk := key{k, ns}
	e, ok := s.entries[kk]
	if !ok {
		s.entries[kk] = &entry{state: Expected}
		Logger().Debug("expecting definition", zap.Stringer("namespace", ns), zap.Stringer("key", k))
		return nil
	}

	switch e.state {
	case Provided:
		e.state = Resolved
		s.settle(kk, e)
		return nil
	case Expected, Resolved:
		if ns == Import {
			// The linker never emits the same import twice.
			return errors.New(errors.PhaseResolve, errors.KindInvalidData).
				Path(ns.String(), k.Module, k.Name).
				Detail("found duplicate JS import: `%s:%s`", k.Module, k.Name).
				Build()
		}
	}
	return nil
}

// Define records a definition for the snippet's key. Defining a key twice is
// an error regardless of whether the first definition was claimed.
func (s *Store) Define(ns Namespace, snippet *metadata.Snippet) error {
	if s.finalized {
		return errors.Internal(errors.PhaseResolve, "store is finalized", nil)
	}

	kk := key{snippet.Key, ns}
	e, ok := s.entries[kk]
	if !ok {
		s.entries[kk] = &entry{state: Provided, snippet: snippet}
		Logger().Debug("definition provided", zap.Stringer("namespace", ns), zap.Stringer("key", snippet.Key))
		return nil
	}

	if e.state != Expected {
		return errors.DuplicateDefinition(ns.String(), snippet.Module, snippet.Name, e.snippet.JS, snippet.JS)
	}

	e.snippet = snippet
	e.state = Resolved
	s.settle(kk, e)
	return nil
}

// settle records a freshly resolved entry and claims its requirement
// closure. A worklist replaces recursion; entries are marked resolved before
// they are queued so each is visited once.
func (s *Store) settle(k key, e *entry) {
	type item struct {
		e *entry
		k key
	}
	work := []item{{e, k}}

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		s.record(it.k, it.e.snippet)

		for _, req := range it.e.snippet.Requires {
			rk := key{req, Embed}
			re, ok := s.entries[rk]
			switch {
			case !ok:
				s.entries[rk] = &entry{state: Expected}
			case re.state == Provided:
				re.state = Resolved
				work = append(work, item{re, rk})
			}
		}
	}
}

func (s *Store) record(k key, snippet *metadata.Snippet) {
	table := s.imports
	if k.ns == Embed {
		table = s.embeds
	}
	names, ok := table[k.Module]
	if !ok {
		names = make(map[string]string)
		table[k.Module] = names
	}
	names[k.Name] = snippet.JS
	Logger().Debug("resolved", zap.Stringer("namespace", k.ns), zap.Stringer("key", k.Key))
}

// Finalize checks that every needed key was defined and that embed
// requirements are acyclic. The store accepts no further calls afterwards.
func (s *Store) Finalize() (*Tables, error) {
	s.finalized = true

	var missing []errors.MissingDefinition
	for k, e := range s.entries {
		if e.state == Expected {
			missing = append(missing, errors.MissingDefinition{
				Namespace: k.ns.String(),
				Module:    k.Module,
				Name:      k.Name,
			})
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingDefinitionsError(missing)
	}

	if cycle := s.findCycle(); cycle != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindCycle).
			Path(cycle[0].Module, cycle[0].Name).
			Value(cycle).
			Detail("JS embeds require each other: %s", formatCycle(cycle)).
			Build()
	}

	return &Tables{Imports: s.imports, Embeds: s.embeds}, nil
}

// findCycle walks the resolved embed graph in sorted key order so the
// reported cycle does not depend on input order.
func (s *Store) findCycle() []metadata.Key {
	var roots []metadata.Key
	for k, e := range s.entries {
		if k.ns == Embed && e.state == Resolved {
			roots = append(roots, k.Key)
		}
	}
	sortKeys(roots)

	const (
		white = iota
		grey
		black
	)
	color := make(map[metadata.Key]int, len(roots))
	var stack []metadata.Key

	var visit func(k metadata.Key) []metadata.Key
	visit = func(k metadata.Key) []metadata.Key {
		color[k] = grey
		stack = append(stack, k)
		e := s.entries[key{k, Embed}]
		for _, req := range e.snippet.Requires {
			switch color[req] {
			case grey:
				for i, sk := range stack {
					if sk == req {
						return append(append([]metadata.Key(nil), stack[i:]...), req)
					}
				}
			case white:
				if c := visit(req); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[k] = black
		return nil
	}

	for _, k := range roots {
		if color[k] == white {
			if c := visit(k); c != nil {
				return c
			}
		}
	}
	return nil
}

func formatCycle(cycle []metadata.Key) string {
	parts := make([]string, len(cycle))
	for i, k := range cycle {
		parts[i] = "`" + k.String() + "`"
	}
	return strings.Join(parts, " -> ")
}

func sortKeys(keys []metadata.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		return keys[i].Name < keys[j].Name
	})
}
