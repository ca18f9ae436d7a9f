package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/vibeswift/pkg/capability"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Limits.InstructionBudget != 250_000 {
		t.Errorf("instruction budget = %d, want 250000", cfg.Limits.InstructionBudget)
	}
	if cfg.DefaultCapabilities != 0 {
		t.Errorf("default capabilities = %v, want empty", cfg.DefaultCapabilities)
	}
}

func TestLoadOverridesLimitsAndCapabilities(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[limits]
instruction_budget = 500
max_call_depth = 16
max_value_stack_depth = 64
wall_clock_limit_ms = 2000

[capabilities]
default = ["foundation_basic", "diagnostics"]
`
	path := filepath.Join(dir, "vibeswift.toml")
	if err := os.WriteFile(path, []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Limits.InstructionBudget != 500 {
		t.Errorf("instruction budget = %d, want 500", cfg.Limits.InstructionBudget)
	}
	if cfg.Limits.MaxCallDepth != 16 {
		t.Errorf("max call depth = %d, want 16", cfg.Limits.MaxCallDepth)
	}
	if cfg.Limits.MaxValueStackDepth != 64 {
		t.Errorf("max value stack depth = %d, want 64", cfg.Limits.MaxValueStackDepth)
	}
	if cfg.Limits.WallClockLimit != 2*time.Second {
		t.Errorf("wall clock limit = %v, want 2s", cfg.Limits.WallClockLimit)
	}
	if !cfg.DefaultCapabilities.Has(capability.FoundationBasic) || !cfg.DefaultCapabilities.Has(capability.Diagnostics) {
		t.Errorf("default capabilities = %v, want foundation_basic+diagnostics", cfg.DefaultCapabilities)
	}
	if cfg.DefaultCapabilities.Has(capability.UIBasic) {
		t.Error("default capabilities should not include ui_basic")
	}
}

func TestLoadPartialLimitsTableKeepsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vibeswift.toml")
	if err := os.WriteFile(path, []byte("[limits]\ninstruction_budget = 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Limits.InstructionBudget != 10 {
		t.Errorf("instruction budget = %d, want 10", cfg.Limits.InstructionBudget)
	}
	if cfg.Limits.MaxCallDepth != 128 {
		t.Errorf("max call depth = %d, want unchanged default 128", cfg.Limits.MaxCallDepth)
	}
}

func TestLoadUnknownCapabilityNameFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vibeswift.toml")
	if err := os.WriteFile(path, []byte("[capabilities]\ndefault = [\"not_a_real_tag\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown capability tag")
	}
}
