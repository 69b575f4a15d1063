// Package engineconfig holds the boundary flags a host supplies at
// setup/eval time: sloppy_mode, max call depth, whether an uncaught throw
// gets printed, plus a pluggable warning hook for non-fatal diagnostics.
// Loadable from YAML, mirroring how a CLI's own settings file works.
package engineconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxCallDepth matches object.maxCallDepthDefault; kept as a separate
// named constant here so a host overriding it via YAML doesn't need to
// import internal/object just to read the default.
const DefaultMaxCallDepth = 512

// Config is the set of host-tunable flags threaded into every
// script.Context this engine creates.
type Config struct {
	// MaxCallDepth bounds interpreter recursion; exceeding it throws
	// RangeError before the callee runs.
	MaxCallDepth int `yaml:"max_call_depth"`

	// SloppyMode relaxes lexer/parser strictness outside of an explicit
	// "use strict" directive: Unicode whitespace/identifier-escapes outside
	// literals, and similar allowances.
	SloppyMode bool `yaml:"sloppy_mode"`

	// PrintLastThrow controls whether an uncaught exception reaching
	// EvalInput's top-level recovery point is printed with source context;
	// CLI embedders want this, library embedders usually don't.
	PrintLastThrow bool `yaml:"print_last_throw"`

	// PrimitiveResult / StringResult control how EvalInput's completion
	// value is coerced before it's returned: to a primitive, or all the way
	// to a string.
	PrimitiveResult bool `yaml:"primitive_result"`
	StringResult    bool `yaml:"string_result"`

	// WarnHook receives non-fatal engine diagnostics: key-table entries
	// approaching exhaustion, numeric-looking property names, and similar.
	// nil is a valid no-op sink; exposing vs. suppressing these is left to
	// the host.
	WarnHook func(string) `yaml:"-"`
}

// Default returns the engine's out-of-the-box configuration: a bare
// ScriptContext with no CLI or host wiring gets this.
func Default() Config {
	return Config{
		MaxCallDepth:   DefaultMaxCallDepth,
		SloppyMode:     true,
		PrintLastThrow: true,
	}
}

// Load reads a YAML config file and overlays it onto Default().
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	return cfg, nil
}
