// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Errors wrap this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory mutation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of mutation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many mutation event ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// DatabasePath enables SQLite write-through persistence when set.
	DatabasePath string `koanf:"database_path"`

	// SeedFile is a YAML meet file loaded at startup when the store is empty.
	SeedFile string `koanf:"seed_file"`

	// DefaultMeet creates an empty session when the store starts empty.
	DefaultMeet bool `koanf:"default_meet"`

	// Strategy search bounds in kilograms.
	StrategyStepKg       float64 `koanf:"strategy_step_kg"`
	StrategyTotalCapKg   float64 `koanf:"strategy_total_cap_kg"`
	StrategyAttemptCapKg float64 `koanf:"strategy_attempt_cap_kg"`
}

// New creates a Config with defaults. The context is reserved for sources
// that need it.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           50_000,
		DefaultMeet:          true,
		StrategyStepKg:       2.5,
		StrategyTotalCapKg:   200,
		StrategyAttemptCapKg: 500,
	}
}
