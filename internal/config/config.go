// Package config loads and validates the runtime configuration.
package config

import (
	"github.com/danang/perkakas/internal/logger"
	"github.com/danang/perkakas/pkg/toolexecutor"
)

// Config is the full runtime configuration: executor tunables plus logging.
type Config struct {
	// Executor holds the execution-core tunables.
	Executor toolexecutor.Config `json:"executor" mapstructure:"executor"`

	// Logging holds logger configuration.
	Logging logger.Config `json:"logging" mapstructure:"logging"`

	// SandboxListPath points to an optional file-backed sandbox list that
	// overrides the static executor allow/deny lists.
	SandboxListPath string `json:"sandbox_list_path" mapstructure:"sandbox_list_path"`
}

// DefaultConfig returns the runtime defaults.
func DefaultConfig() *Config {
	return &Config{
		Executor: toolexecutor.DefaultConfig(),
		Logging:  logger.DefaultConfig(),
	}
}
