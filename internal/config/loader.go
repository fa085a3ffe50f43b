package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GLANCE_CONFIG is set
//  3. env (prefix GLANCE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GLANCE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: GLANCE_GOAL_DB_PATH, GLANCE_DEBOUNCE_MS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("GLANCE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "glance_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.GoalDBPath == "" {
		return nil, fmt.Errorf("%w: goal_db_path must not be empty", ErrInvalidConfig)
	}
	if cfg.SnapshotDBPath == "" {
		return nil, fmt.Errorf("%w: snapshot_db_path must not be empty", ErrInvalidConfig)
	}
	if cfg.DebounceMS <= 0 {
		return nil, fmt.Errorf("%w: debounce_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
