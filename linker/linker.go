package linker

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/assembler"
	"github.com/wippyai/js-bindgen-ld/config"
	"github.com/wippyai/js-bindgen-ld/diag"
	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/glue"
	"github.com/wippyai/js-bindgen-ld/ldargs"
	"github.com/wippyai/js-bindgen-ld/metadata"
	"github.com/wippyai/js-bindgen-ld/resolve"
	"github.com/wippyai/js-bindgen-ld/rewrite"
	"github.com/wippyai/js-bindgen-ld/scan"
	"github.com/wippyai/js-bindgen-ld/wasm"
)

// Options configures linker behavior.
type Options struct {
	Config config.Config
	Diag   *diag.Printer
	// Version is recorded in the producers section of the output.
	Version string
	// Stdio of the backing linker. Nil streams inherit the process's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Linker runs the pre-link, link and post-link pipeline for one invocation.
type Linker struct {
	opts  Options
	names metadata.Names
}

// New creates a Linker.
func New(opts Options) *Linker {
	if opts.Diag == nil {
		opts.Diag = diag.Stderr()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Linker{opts: opts, names: opts.Config.Names()}
}

// Result summarizes a successful link.
type Result struct {
	Plan        *Plan
	Memory      rewrite.Memory
	Output      string
	Glue        string
	PackageGlue string // empty when no package copy was made
	Scan        scan.Stats
	Assembly    assembler.Stats
	Imports     int
	Embeds      int
}

// Run links argv, the backing linker's command line without program name.
func (l *Linker) Run(ctx context.Context, argv []string) (*Result, error) {
	inv, err := ldargs.Parse(argv)
	if err != nil {
		return nil, err
	}
	plan, err := NewPlan(inv, l.names)
	if err != nil {
		return nil, err
	}
	log := Logger().With(zap.String("output", plan.Output), zap.String("arch", plan.Arch))

	tpl, err := glue.Load(l.opts.Config.Template)
	if err != nil {
		return nil, err
	}

	store := resolve.New()
	scanner := scan.New(l.names)
	compiler := assembler.New(assembler.Options{
		Diag:     l.opts.Diag,
		Program:  l.opts.Config.Assembler,
		Arch:     plan.Arch,
		Features: l.opts.Config.AssemblerFeatures,
	})

	if err := l.pre(ctx, plan, scanner, compiler, store); err != nil {
		return nil, err
	}
	log.Debug("pre-processing done",
		zap.Int("inputs", scanner.Stats().Inputs),
		zap.Int("compiled", compiler.Stats().Compiled),
		zap.Int("cached", compiler.Stats().Cached))

	extra := append(append([]string(nil), plan.Extra...), compiler.Paths()...)
	if err := l.link(ctx, inv.Append(extra...)); err != nil {
		return nil, err
	}

	res, err := l.post(ctx, plan, store, tpl)
	if err != nil {
		return nil, err
	}
	res.Scan = scanner.Stats()
	res.Assembly = compiler.Stats()

	log.Info("linked",
		zap.String("glue", res.Glue),
		zap.Int("imports", res.Imports),
		zap.Int("embeds", res.Embeds))
	return res, nil
}

// pre scans every input, compiles embedded assembly and feeds snippet
// definitions into the store.
func (l *Linker) pre(ctx context.Context, plan *Plan, scanner *scan.Scanner, compiler *assembler.Compiler, store *resolve.Store) error {
	return scanner.Scan(ctx, plan.Invocation.Inputs(), func(it scan.Item) error {
		switch it.Record.Kind {
		case metadata.KindAssembly:
			return compiler.Compile(ctx, assembler.Unit{
				Path:   it.AsmPath(),
				Source: it.Source(),
				Text:   it.Record.Assembly,
			})
		case metadata.KindImport:
			return store.Define(resolve.Import, it.Record.Snippet)
		case metadata.KindEmbed:
			return store.Define(resolve.Embed, it.Record.Snippet)
		default:
			return errors.Internal(errors.PhaseScan, "unexpected record kind "+it.Record.Kind.String(), nil)
		}
	})
}

// link runs the backing linker with inherited stdio.
func (l *Linker) link(ctx context.Context, args []string) error {
	program := l.opts.Config.Linker
	Logger().Debug("running linker", zap.String("program", program), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdin = l.opts.Stdin
	cmd.Stdout = l.opts.Stdout
	cmd.Stderr = l.opts.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return &errors.SubprocessError{
			Phase:    errors.PhaseLink,
			Program:  program,
			ExitCode: exitErr.ExitCode(),
		}
	}
	return errors.New(errors.PhaseLink, errors.KindSubprocess).
		Path(program).
		Detail("failed to run linker").
		Cause(err).
		Build()
}

// post rewrites the linked module, resolves imports against the collected
// snippets and writes the module and its glue.
func (l *Linker) post(ctx context.Context, plan *Plan, store *resolve.Store, tpl *glue.Template) (*Result, error) {
	linked, err := os.ReadFile(plan.Output)
	if err != nil {
		return nil, errors.IO(errors.PhaseRewrite, plan.Output, err)
	}

	rewritten, err := rewrite.Rewrite(linked, rewrite.Options{
		Names:          l.names,
		MainMemory:     plan.MainMemory,
		ExternrefTable: l.opts.Config.ExternrefTable(),
		Version:        l.opts.Version,
	}, func(imp wasm.Import) error {
		return store.Need(resolve.Import, metadata.Key{Module: imp.Module, Name: imp.Name})
	})
	if err != nil {
		return nil, err
	}

	tables, err := store.Finalize()
	if err != nil {
		return nil, err
	}

	if l.opts.Config.Verify {
		if err := rewrite.Verify(ctx, rewritten.Module, rewritten.Memory); err != nil {
			return nil, err
		}
	}

	doc := tpl.Render(glue.Input{
		Tables:     tables,
		MainMemory: plan.MainMemory,
		Memory:     rewritten.Memory,
	})

	if err := os.WriteFile(plan.Output, rewritten.Module, 0o644); err != nil {
		return nil, errors.IO(errors.PhaseRewrite, plan.Output, err)
	}

	res := &Result{
		Plan:    plan,
		Memory:  rewritten.Memory,
		Output:  plan.Output,
		Glue:    GluePath(plan.Output),
		Imports: tables.Imports.Len(),
		Embeds:  tables.Embeds.Len(),
	}
	if err := writeFile(res.Glue, doc); err != nil {
		return nil, err
	}

	// The build tool copies the final output to the package name without
	// its fingerprint; the glue follows it there.
	if pkg := l.opts.Config.Package; pkg != "" {
		path := filepath.Join(filepath.Dir(plan.Output), pkg+glue.Extension)
		if path != res.Glue {
			if err := writeFile(path, doc); err != nil {
				return nil, err
			}
			res.PackageGlue = path
		}
	}
	return res, nil
}

// GluePath returns the glue document path for a module output path.
func GluePath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + glue.Extension
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.IO(errors.PhaseEmit, path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.IO(errors.PhaseEmit, path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.IO(errors.PhaseEmit, path, err)
	}
	if err := f.Close(); err != nil {
		return errors.IO(errors.PhaseEmit, path, err)
	}
	return nil
}
