package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	c := Default()
	if c.TargetTriple != "x86_64-unknown-linux-gnu" {
		t.Errorf("TargetTriple = %q, want default triple", c.TargetTriple)
	}
	if c.Wasm.MemoryInitialPages != 1 {
		t.Errorf("Wasm.MemoryInitialPages = %d, want 1", c.Wasm.MemoryInitialPages)
	}
	if c.JS.Indent != 2 {
		t.Errorf("JS.Indent = %d, want 2", c.JS.Indent)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xirc.yaml")
	doc := "targetTriple: wasm32-unknown-unknown\njs:\n  semicolons: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.TargetTriple != "wasm32-unknown-unknown" {
		t.Errorf("TargetTriple = %q, want overlay value", c.TargetTriple)
	}
	if !c.JS.Semicolons {
		t.Errorf("JS.Semicolons = false, want true from overlay")
	}
	if c.Wasm.MemoryInitialPages != 1 {
		t.Errorf("Wasm.MemoryInitialPages = %d, want default 1 preserved", c.Wasm.MemoryInitialPages)
	}
}

func TestValidateRejectsOutOfRangeOptimizationLevel(t *testing.T) {
	c := Default()
	c.OptimizationLevel = 7
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an out-of-range optimization level")
	}
}

func TestValidateRejectsMaxPagesBelowInitial(t *testing.T) {
	c := Default()
	c.Wasm.MemoryInitialPages = 4
	c.Wasm.MemoryMaxPages = 2
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error when memoryMaxPages < memoryInitialPages")
	}
}
