package metadata

import "strings"

// DefaultNamespace prefixes every custom section this linker consumes.
const DefaultNamespace = "js_bindgen"

// Section name suffixes below the namespace.
const (
	suffixAssembly = "assembly"
	suffixImport   = "import"
	suffixEmbed    = "embed"
)

// Kind identifies what a metadata section carries.
type Kind uint8

const (
	KindNone Kind = iota
	KindAssembly
	KindImport
	KindEmbed
)

func (k Kind) String() string {
	switch k {
	case KindAssembly:
		return "assembly"
	case KindImport:
		return "import"
	case KindEmbed:
		return "embed"
	default:
		return "none"
	}
}

// Names holds the custom section names for one namespace.
type Names struct {
	Namespace string
	Assembly  string
	Import    string
	Embed     string
}

// NewNames derives the section names for namespace. An empty namespace
// selects DefaultNamespace.
func NewNames(namespace string) Names {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Names{
		Namespace: namespace,
		Assembly:  namespace + "." + suffixAssembly,
		Import:    namespace + "." + suffixImport,
		Embed:     namespace + "." + suffixEmbed,
	}
}

// Kind classifies a custom section name.
func (n Names) Kind(section string) Kind {
	switch section {
	case n.Assembly:
		return KindAssembly
	case n.Import:
		return KindImport
	case n.Embed:
		return KindEmbed
	default:
		return KindNone
	}
}

// Internal reports whether section lives under the namespace and must not
// survive into the final module.
func (n Names) Internal(section string) bool {
	return strings.HasPrefix(section, n.Namespace+".")
}
