// Package assembler compiles assembly text found in object metadata into
// object files the backing linker can consume.
//
// Compiled objects are cached by path: a unit whose derived object already
// exists is never recompiled. Freshness is left to the surrounding build
// system, which removes stale outputs together with their inputs.
package assembler

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/diag"
	"github.com/wippyai/js-bindgen-ld/errors"
)

// DefaultProgram is the assembler executable looked up in PATH.
const DefaultProgram = "llvm-mc"

// DefaultFeatures are the instruction set features every unit is assembled
// with.
var DefaultFeatures = []string{"+reference-types", "+call-indirect-overlong"}

// Unit is one assembly text and the object path derived for it.
type Unit struct {
	Path   string // derived object path, also the cache key
	Source string // input (and member) the text was found in
	Text   []byte
}

// Options configures a Compiler.
type Options struct {
	Diag     *diag.Printer
	Program  string
	Arch     string // wasm32 or wasm64
	Features []string
}

// Stats counts compiler outcomes.
type Stats struct {
	Compiled int
	Cached   int
}

// Compiler turns Units into object files, one subprocess at a time.
type Compiler struct {
	opts  Options
	paths []string
	stats Stats
}

// New creates a compiler. Zero option fields take their defaults.
func New(opts Options) *Compiler {
	if opts.Program == "" {
		opts.Program = DefaultProgram
	}
	if opts.Arch == "" {
		opts.Arch = "wasm32"
	}
	if opts.Features == nil {
		opts.Features = DefaultFeatures
	}
	if opts.Diag == nil {
		opts.Diag = diag.Stderr()
	}
	return &Compiler{opts: opts}
}

// Args returns the assembler arguments for the configured target.
func (c *Compiler) Args() []string {
	return []string{
		"-arch=" + c.opts.Arch,
		"-mattr=" + strings.Join(c.opts.Features, ","),
		"-filetype=obj",
	}
}

// Paths returns the object paths of every unit seen so far, compiled or
// cached, in the order they were compiled.
func (c *Compiler) Paths() []string {
	return append([]string(nil), c.paths...)
}

// Stats returns the outcome counters.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// Compile makes sure u.Path holds the object for u and records the path.
func (c *Compiler) Compile(ctx context.Context, u Unit) error {
	log := Logger().With(zap.String("object", u.Path), zap.String("source", u.Source))

	_, err := os.Stat(u.Path)
	switch {
	case err == nil:
		log.Debug("using cached assembly object")
		c.stats.Cached++
		c.paths = append(c.paths, u.Path)
		return nil
	case !stderrors.Is(err, os.ErrNotExist):
		return errors.IO(errors.PhaseAssemble, u.Path, err)
	}

	object, err := c.assemble(ctx, u.Text)
	if err != nil {
		return err
	}
	if err := writeAtomic(u.Path, object); err != nil {
		return errors.IO(errors.PhaseAssemble, u.Path, err)
	}

	log.Debug("compiled assembly object", zap.Int("size", len(object)))
	c.stats.Compiled++
	c.paths = append(c.paths, u.Path)
	return nil
}

func (c *Compiler) assemble(ctx context.Context, text []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.opts.Program, c.Args()...)
	cmd.Stdin = bytes.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		return nil, errors.New(errors.PhaseAssemble, errors.KindSubprocess).
			Path(c.opts.Program).
			Detail("failed to run assembler").
			Cause(err).
			Build()
	}

	c.opts.Diag.Failure(c.opts.Program, text, stdout.Bytes(), stderr.Bytes())
	return nil, &errors.SubprocessError{
		Phase:    errors.PhaseAssemble,
		Program:  c.opts.Program,
		ExitCode: exitErr.ExitCode(),
	}
}

// writeAtomic writes data next to path and renames it into place, so an
// interrupted write never leaves a file that looks like a cache hit.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
