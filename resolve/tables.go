package resolve

import "sort"

// Table maps module to item name to snippet text. An empty snippet in the
// import table marks an import satisfied by another linked module.
type Table map[string]map[string]string

// Modules returns the module names in sorted order.
func (t Table) Modules() []string {
	modules := make([]string, 0, len(t))
	for m := range t {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

// Names returns the item names of module in sorted order.
func (t Table) Names(module string) []string {
	names := make([]string, 0, len(t[module]))
	for n := range t[module] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of entries.
func (t Table) Len() int {
	n := 0
	for _, names := range t {
		n += len(names)
	}
	return n
}

// Tables are the finalized resolution results.
type Tables struct {
	Imports Table
	Embeds  Table
}
