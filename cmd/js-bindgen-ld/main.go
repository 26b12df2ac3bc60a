// Command js-bindgen-ld wraps the wasm linker: it compiles assembly embedded
// in the inputs, runs the backing linker and emits the JS glue for the
// linked module.
//
// It is configured as the linker of a Wasm target and accepts wasm-ld
// arguments unchanged:
//
//	js-bindgen-ld -flavor wasm [wasm-ld options] -o out.wasm inputs...
package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/js-bindgen-ld/assembler"
	"github.com/wippyai/js-bindgen-ld/config"
	"github.com/wippyai/js-bindgen-ld/diag"
	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/glue"
	"github.com/wippyai/js-bindgen-ld/ldargs"
	"github.com/wippyai/js-bindgen-ld/linker"
	"github.com/wippyai/js-bindgen-ld/resolve"
	"github.com/wippyai/js-bindgen-ld/rewrite"
	"github.com/wippyai/js-bindgen-ld/scan"
)

// version is recorded in the producers section of every output.
var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := diag.Stderr()

	cfg, err := config.Load()
	if err != nil {
		printer.Errorf("error: %v", err)
		return 1
	}

	log := newLogger(cfg.Level())
	defer func() { _ = log.Sync() }()
	installLogger(log)

	argv, err := ldargs.ExpandResponseFiles(os.Args[1:])
	if err != nil {
		printer.Errorf("error: %v", err)
		return 1
	}

	l := linker.New(linker.Options{
		Config:  cfg,
		Diag:    printer,
		Version: version,
	})
	if _, err := l.Run(ctx, argv); err != nil {
		return exitCode(printer, err)
	}
	return 0
}

// exitCode reports err and picks the process exit status. A failed child
// process has already printed its own diagnostics.
func exitCode(printer *diag.Printer, err error) int {
	var se *errors.SubprocessError
	if stderrors.As(err, &se) {
		printer.Notef("%v", err)
		if se.ExitCode > 0 {
			return se.ExitCode
		}
		return 1
	}
	printer.Errorf("error: %v", err)
	return 1
}

func newLogger(level zapcore.Level) *zap.Logger {
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("js-bindgen-ld")
}

func installLogger(log *zap.Logger) {
	ldargs.SetLogger(log.Named("args"))
	scan.SetLogger(log.Named("scan"))
	assembler.SetLogger(log.Named("assembler"))
	rewrite.SetLogger(log.Named("rewrite"))
	resolve.SetLogger(log.Named("resolve"))
	glue.SetLogger(log.Named("glue"))
	linker.SetLogger(log)
}
