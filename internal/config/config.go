// Package config loads and defaults the compiler's tunables (spec.md §6.1):
// optimization level, LLVM target triple, WASM memory bounds, the Lua
// continue-warning toggle, JS formatting knobs, and strict-determinism
// mode. Configuration layers the way the teacher's CLI layers flags over
// defaults: an xirc.yaml file supplies a base, and callers may override
// individual fields afterward from command-line flags.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the compiler's full tunable surface (spec.md §6.1).
type Config struct {
	OptimizationLevel int    `yaml:"optimizationLevel"`
	TargetTriple      string `yaml:"targetTriple"`

	Wasm struct {
		MemoryInitialPages int `yaml:"memoryInitialPages"`
		MemoryMaxPages     int `yaml:"memoryMaxPages"`
	} `yaml:"wasm"`

	Lua struct {
		EmitContinueWarning bool `yaml:"emitContinueWarning"`
	} `yaml:"lua"`

	JS struct {
		Semicolons bool `yaml:"semicolons"`
		Indent     int  `yaml:"indent"`
	} `yaml:"js"`

	Determinism struct {
		Strict bool `yaml:"strict"`
	} `yaml:"determinism"`
}

// Default returns the configuration spec.md §6.1 names as defaults.
func Default() Config {
	var c Config
	c.OptimizationLevel = 0
	c.TargetTriple = "x86_64-unknown-linux-gnu"
	c.Wasm.MemoryInitialPages = 1
	c.Lua.EmitContinueWarning = true
	c.JS.Semicolons = false
	c.JS.Indent = 2
	c.Determinism.Strict = false
	return c
}

// Load reads an xirc.yaml document from path, starting from Default() and
// overlaying whatever fields the document sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a configuration that violates spec.md §6.1's closed
// ranges (optimizationLevel and the WASM page bounds).
func (c Config) Validate() error {
	if c.OptimizationLevel < 0 || c.OptimizationLevel > 3 {
		return fmt.Errorf("config: optimizationLevel must be in [0,3], got %d", c.OptimizationLevel)
	}
	if c.Wasm.MemoryInitialPages < 1 {
		return fmt.Errorf("config: wasm.memoryInitialPages must be >= 1, got %d", c.Wasm.MemoryInitialPages)
	}
	if c.Wasm.MemoryMaxPages != 0 && c.Wasm.MemoryMaxPages < c.Wasm.MemoryInitialPages {
		return fmt.Errorf("config: wasm.memoryMaxPages (%d) must be >= memoryInitialPages (%d)", c.Wasm.MemoryMaxPages, c.Wasm.MemoryInitialPages)
	}
	if c.JS.Indent < 0 {
		return fmt.Errorf("config: js.indent must be >= 0, got %d", c.JS.Indent)
	}
	return nil
}
