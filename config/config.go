// Package config resolves the linker configuration once at startup.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// JS_BINDGEN_CONFIG, then individual environment overrides. The result is
// validated before use and threaded explicitly through the pipeline.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/js-bindgen-ld/assembler"
	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/metadata"
)

// Environment variables read by Load.
const (
	EnvFile      = "JS_BINDGEN_CONFIG"
	EnvLinker    = "JS_BINDGEN_LINKER"
	EnvAssembler = "JS_BINDGEN_ASSEMBLER"
	EnvTemplate  = "JS_BINDGEN_TEMPLATE"
	EnvLog       = "JS_BINDGEN_LOG"
	EnvVerify    = "JS_BINDGEN_VERIFY"
	EnvPackage   = "CARGO_CRATE_NAME"
)

// DefaultLinker is the backing linker run after pre-processing.
const DefaultLinker = "rust-lld"

// Config holds every tunable of a link.
type Config struct {
	// Namespace prefixes the metadata custom section names.
	Namespace string `yaml:"namespace" validate:"required,excludesall=."`

	// Linker is the backing wasm-ld compatible linker.
	Linker string `yaml:"linker" validate:"required"`

	// Assembler compiles embedded assembly to objects.
	Assembler         string   `yaml:"assembler" validate:"required"`
	AssemblerFeatures []string `yaml:"assembler_features" validate:"dive,required,startswith=+|startswith=-"`

	// ExternrefModule and ExternrefName identify the runtime externref table
	// import that is forced to 32-bit indices.
	ExternrefModule string `yaml:"externref_module" validate:"required"`
	ExternrefName   string `yaml:"externref_name" validate:"required"`

	// Package names the copy of the glue made next to the output. Empty
	// disables the copy.
	Package string `yaml:"package"`

	// Template overrides the built-in glue template.
	Template string `yaml:"template"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Verify compiles the rewritten module with wazero before writing it.
	Verify bool `yaml:"verify"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Namespace:         metadata.DefaultNamespace,
		Linker:            DefaultLinker,
		Assembler:         assembler.DefaultProgram,
		AssemblerFeatures: append([]string(nil), assembler.DefaultFeatures...),
		ExternrefModule:   "js_sys",
		ExternrefName:     "externref.table",
		LogLevel:          "warn",
	}
}

// Load resolves the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadFrom resolves the configuration using lookup for the environment.
func LoadFrom(lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path, ok := lookup(EnvFile); ok && path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(errors.PhaseConfig, path, err)
	}
	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path).
			Cause(err).
			Detail("failed to parse config file").
			Build()
	}
	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvLinker, &c.Linker)
	set(EnvAssembler, &c.Assembler)
	set(EnvTemplate, &c.Template)
	set(EnvLog, &c.LogLevel)
	set(EnvPackage, &c.Package)
	c.LogLevel = strings.ToLower(c.LogLevel)

	if v, ok := lookup(EnvVerify); ok && v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(EnvVerify).
				Value(v).
				Cause(err).
				Detail("expected a boolean").
				Build()
		}
		c.Verify = verify
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "config validation failed")
	}
	return nil
}

// Names returns the metadata section names for the configured namespace.
func (c *Config) Names() metadata.Names {
	return metadata.NewNames(c.Namespace)
}

// ExternrefTable returns the key of the runtime externref table import.
func (c *Config) ExternrefTable() metadata.Key {
	return metadata.Key{Module: c.ExternrefModule, Name: c.ExternrefName}
}

// Level returns the zap level for LogLevel.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel
	}
	return level
}
