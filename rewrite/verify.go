package rewrite

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
)

// Verify compiles module with wazero to catch encoding mistakes before the
// module is written out. Modules with a 64-bit main memory are skipped since
// wazero does not implement memory64.
func Verify(ctx context.Context, module []byte, mem Memory) error {
	if mem.Memory64 {
		Logger().Debug("skipping verification of memory64 module")
		return nil
	}

	cfg := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		return errors.Internal(errors.PhaseRewrite, "rewritten module failed validation", err)
	}
	defer compiled.Close(ctx)

	Logger().Debug("verified rewritten module",
		zap.Int("imported_functions", len(compiled.ImportedFunctions())),
		zap.Int("imported_memories", len(compiled.ImportedMemories())))
	return nil
}
