package metadata

// Key identifies an import or embed by owning module and item name.
type Key struct {
	Module string
	Name   string
}

func (k Key) String() string {
	return k.Module + ":" + k.Name
}

// Snippet is one host-language definition carried by an import or embed
// section. An empty JS on an import means the import is satisfied by another
// linked module and needs no glue.
type Snippet struct {
	Key
	JS       string
	Requires []Key
}

// Record is a decoded metadata block.
type Record struct {
	Snippet  *Snippet // set for KindImport and KindEmbed
	Assembly []byte   // set for KindAssembly
	Kind     Kind
}
