package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Validate checks a loaded configuration for consistency.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := cfg.Executor.Validate(); err != nil {
		return fmt.Errorf("executor config: %w", err)
	}

	if cfg.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
			return fmt.Errorf("logging config: unknown level %q", cfg.Logging.Level)
		}
	}

	if cfg.SandboxListPath != "" {
		dir := filepath.Dir(cfg.SandboxListPath)
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return fmt.Errorf("sandbox_list_path parent %q is not a directory", dir)
		}
	}

	return nil
}
