// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GoalDBPath locates the goal-tracking app's SQLite database,
	// opened read-only.
	GoalDBPath string `koanf:"goal_db_path"`

	// SnapshotDBPath locates the shared snapshot database the native
	// renderer reads.
	SnapshotDBPath string `koanf:"snapshot_db_path"`

	// NotifyPath is the marker file touched after each snapshot write.
	// Empty disables the notify channel.
	NotifyPath string `koanf:"notify_path"`

	// MetricsAddr configures the Prometheus HTTP listen address.
	// Empty disables the metrics endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// DebounceMS coalesces goal-change bursts before rebuilding.
	DebounceMS int `koanf:"debounce_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		GoalDBPath:     "goals.db",
		SnapshotDBPath: "widget.db",
		NotifyPath:     "",
		MetricsAddr:    ":9090",
		DebounceMS:     300,
	}
}
