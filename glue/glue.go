// Package glue renders the JS document that instantiates the linked module.
//
// A template holds three markers which are replaced by the main memory
// constructor, the embed literal and the import object literal. Modules and
// entries are emitted in sorted order so identical resolution tables always
// render identical text.
package glue

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
	"github.com/wippyai/js-bindgen-ld/resolve"
	"github.com/wippyai/js-bindgen-ld/rewrite"
)

// Template markers, in the order they must appear.
const (
	MarkerMemory       = "JBG_PLACEHOLDER_MEMORY"
	MarkerEmbed        = "JBG_PLACEHOLDER_JS_EMBED"
	MarkerImportObject = "JBG_PLACEHOLDER_IMPORT_OBJECT"
)

// Extension is the file extension of the rendered document.
const Extension = ".mjs"

const (
	moduleIndent = "\t\t\t"
	entryIndent  = "\t\t\t\t"
	closeIndent  = "\t\t"
)

//go:embed imports.mjs
var defaultSource string

// Template is a parsed glue template split at its markers.
type Template struct {
	head   string // up to the memory marker
	memory string // between memory and embed markers
	embed  string // between embed and import object markers
	tail   string // after the import object marker
}

// Default returns the built-in template.
func Default() *Template {
	t, err := Parse(defaultSource)
	if err != nil {
		panic("glue: built-in template: " + err.Error())
	}
	return t
}

// Load reads a template from path. An empty path selects the built-in one.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseEmit, path, err)
	}
	t, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	Logger().Debug("loaded template", zap.String("path", path))
	return t, nil
}

// Parse splits source at the three markers. Each marker must appear once
// and in order.
func Parse(source string) (*Template, error) {
	var parts [4]string
	rest := source
	for i, marker := range []string{MarkerMemory, MarkerEmbed, MarkerImportObject} {
		before, after, ok := strings.Cut(rest, marker)
		if !ok {
			return nil, errors.New(errors.PhaseEmit, errors.KindInvalidInput).
				Value(marker).
				Detail("template is missing %s", marker).
				Build()
		}
		parts[i] = before
		rest = after
	}
	parts[3] = rest
	return &Template{head: parts[0], memory: parts[1], embed: parts[2], tail: parts[3]}, nil
}

// Input is everything a rendering needs.
type Input struct {
	Tables *resolve.Tables
	// MainMemory is the import the memory object is supplied under.
	MainMemory metadata.Key
	Memory     rewrite.Memory
}

// Render produces the glue document.
func (t *Template) Render(in Input) []byte {
	var b strings.Builder

	b.WriteString(t.head)
	b.WriteString(MemoryLiteral(in.Memory))
	b.WriteString(t.memory)
	writeEmbeds(&b, in.Tables.Embeds)
	b.WriteString(t.embed)
	writeImportObject(&b, in.Tables.Imports, in.MainMemory)
	b.WriteString(t.tail)

	return []byte(b.String())
}

// MemoryLiteral renders the WebAssembly.Memory constructor call for mem.
// 64-bit memories use BigInt literals.
func MemoryLiteral(mem rewrite.Memory) string {
	suffix := ""
	if mem.Memory64 {
		suffix = "n"
	}

	var b strings.Builder
	b.WriteString("new WebAssembly.Memory({ initial: ")
	b.WriteString(strconv.FormatUint(mem.Initial, 10))
	b.WriteString(suffix)
	if mem.Maximum != nil {
		b.WriteString(", maximum: ")
		b.WriteString(strconv.FormatUint(*mem.Maximum, 10))
		b.WriteString(suffix)
	}
	if mem.Memory64 {
		b.WriteString(", address: 'i64'")
	}
	if mem.Shared {
		b.WriteString(", shared: true")
	}
	b.WriteString(" })")
	return b.String()
}

func writeEmbeds(b *strings.Builder, embeds resolve.Table) {
	b.WriteString("{\n")
	for _, module := range embeds.Modules() {
		openModule(b, module)
		for _, name := range embeds.Names(module) {
			writeEntry(b, name, embeds[module][name])
		}
		closeModule(b)
	}
	b.WriteString(closeIndent + "}")
}

func writeImportObject(b *strings.Builder, imports resolve.Table, memory metadata.Key) {
	b.WriteString("{\n")

	// A module with glue of its own carries the memory inside its object.
	if !hasGlue(imports[memory.Module]) {
		b.WriteString(moduleIndent + memory.Module + ": { " + memory.Name + ": this.#memory },\n")
	}

	for _, module := range imports.Modules() {
		names := imports[module]
		if !hasGlue(names) {
			continue
		}
		openModule(b, module)
		if module == memory.Module {
			b.WriteString(entryIndent + "'" + memory.Name + "': this.#memory,\n")
		}
		for _, name := range imports.Names(module) {
			if js := names[name]; js != "" {
				writeEntry(b, name, js)
			}
		}
		closeModule(b)
	}

	b.WriteString(closeIndent + "}")
}

// hasGlue reports whether any import of a module carries a snippet.
// Imports satisfied by another linked module have none.
func hasGlue(names map[string]string) bool {
	for _, js := range names {
		if js != "" {
			return true
		}
	}
	return false
}

func openModule(b *strings.Builder, module string) {
	b.WriteString(moduleIndent + module + ": {\n")
}

func closeModule(b *strings.Builder) {
	b.WriteString(moduleIndent + "},\n")
}

func writeEntry(b *strings.Builder, name, js string) {
	b.WriteString(entryIndent + "'" + name + "': ")
	b.WriteString(Reindent(js))
	b.WriteString(",\n")
}

// Reindent joins the lines of a snippet so continuation lines sit at entry
// depth. A trailing newline does not produce an extra line and a carriage
// return is removed only when it precedes a newline.
func Reindent(js string) string {
	return strings.Join(splitLines(js), "\n"+entryIndent)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	last := len(lines) - 1
	for i := 0; i < last; i++ {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	if lines[last] == "" {
		lines = lines[:last]
	}
	return lines
}
