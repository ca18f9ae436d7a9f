// Package config loads run limits and a default capability preset
// from an optional TOML file, falling back to in-code defaults when
// the file or either of its tables is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/guard"
)

// fileLimits and fileCapabilities mirror the [limits] and
// [capabilities] TOML tables field-for-field.
type fileLimits struct {
	InstructionBudget  *int64 `toml:"instruction_budget"`
	MaxCallDepth       *int   `toml:"max_call_depth"`
	MaxValueStackDepth *int   `toml:"max_value_stack_depth"`
	WallClockLimitMs   *int64 `toml:"wall_clock_limit_ms"`
}

type fileCapabilities struct {
	Default []string `toml:"default"`
}

type fileConfig struct {
	Limits       *fileLimits       `toml:"limits"`
	Capabilities *fileCapabilities `toml:"capabilities"`
}

// UnknownCapabilityError reports a name in a [capabilities] table that
// does not match any known capability.Tag.
type UnknownCapabilityError struct{ Name string }

func (e UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability tag in config: %q", e.Name)
}

// Config is the loaded or defaulted run configuration: the resource
// limits and the default capability set a caller gets when it does
// not supply its own.
type Config struct {
	Limits              guard.Limits
	DefaultCapabilities capability.Set
}

// Defaults returns the in-code fallback: guard.Defaults() limits and
// an empty capability set.
func Defaults() Config {
	return Config{Limits: guard.Defaults(), DefaultCapabilities: capability.Set(0)}
}

// Load reads path as TOML and returns a Config seeded from
// Defaults() with any present fields overridden. A missing file is
// not an error: Load returns Defaults() unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if isNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if fc.Limits != nil {
		applyLimits(&cfg.Limits, fc.Limits)
	}
	if fc.Capabilities != nil {
		caps, err := parseCapabilitySet(fc.Capabilities.Default)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultCapabilities = caps
	}
	return cfg, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

func applyLimits(l *guard.Limits, fl *fileLimits) {
	if fl.InstructionBudget != nil {
		l.InstructionBudget = *fl.InstructionBudget
	}
	if fl.MaxCallDepth != nil {
		l.MaxCallDepth = *fl.MaxCallDepth
	}
	if fl.MaxValueStackDepth != nil {
		l.MaxValueStackDepth = *fl.MaxValueStackDepth
	}
	if fl.WallClockLimitMs != nil {
		l.WallClockLimit = time.Duration(*fl.WallClockLimitMs) * time.Millisecond
	}
}

func parseCapabilitySet(names []string) (capability.Set, error) {
	var set capability.Set
	for _, name := range names {
		tag, ok := capability.ParseTag(name)
		if !ok {
			return 0, UnknownCapabilityError{Name: name}
		}
		set = set.With(tag)
	}
	return set, nil
}
