package toolexecutor

import (
	"fmt"
	"time"

	"github.com/danang/perkakas/pkg/compress"
)

// Config holds every tunable of the execution core.
type Config struct {
	// DefaultTimeout applies when neither the tool nor the context declares one.
	DefaultTimeout time.Duration `json:"default_timeout" mapstructure:"default_timeout"`
	// MaxTimeout caps every effective timeout.
	MaxTimeout time.Duration `json:"max_timeout" mapstructure:"max_timeout"`
	// MaxConcurrent bounds how many batch calls run at once.
	MaxConcurrent int `json:"max_concurrent" mapstructure:"max_concurrent"`
	// MaxResultLength is the content size above which compression runs.
	MaxResultLength int `json:"max_result_length" mapstructure:"max_result_length"`
	// TruncationStrategy selects the compression strategy.
	TruncationStrategy compress.Strategy `json:"truncation_strategy" mapstructure:"truncation_strategy"`
	// MaxDepth bounds nested tool invocation per run.
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`

	DefaultSandboxMode bool     `json:"default_sandbox_mode" mapstructure:"default_sandbox_mode"`
	SandboxAllowlist   []string `json:"sandbox_allowlist" mapstructure:"sandbox_allowlist"`
	SandboxDenylist    []string `json:"sandbox_denylist" mapstructure:"sandbox_denylist"`

	// RequireConfirmationFor lists tool name patterns guarded by the
	// confirmation hook.
	RequireConfirmationFor []string `json:"require_confirmation_for" mapstructure:"require_confirmation_for"`

	EnableCaching bool          `json:"enable_caching" mapstructure:"enable_caching"`
	CacheMaxAge   time.Duration `json:"cache_max_age" mapstructure:"cache_max_age"`
}

// DefaultConfig returns the runtime defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout:     30 * time.Second,
		MaxTimeout:         2 * time.Minute,
		MaxConcurrent:      5,
		MaxResultLength:    10 * 1024,
		TruncationStrategy: compress.StrategySmart,
		MaxDepth:           10,
		CacheMaxAge:        5 * time.Minute,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive")
	}
	if c.MaxTimeout <= 0 {
		return fmt.Errorf("max_timeout must be positive")
	}
	if c.DefaultTimeout > c.MaxTimeout {
		return fmt.Errorf("default_timeout %v exceeds max_timeout %v", c.DefaultTimeout, c.MaxTimeout)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive")
	}
	if c.MaxResultLength <= 0 {
		return fmt.Errorf("max_result_length must be positive")
	}
	if !compress.IsValidStrategy(c.TruncationStrategy) {
		return fmt.Errorf("unknown truncation strategy %q", c.TruncationStrategy)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	if c.EnableCaching && c.CacheMaxAge <= 0 {
		return fmt.Errorf("cache_max_age must be positive when caching is enabled")
	}
	return nil
}

// effectiveTimeout computes min(tool timeout, context timeout, global max),
// falling back to the default when neither is declared.
func (c Config) effectiveTimeout(toolTimeout, ctxTimeout time.Duration) time.Duration {
	t := c.DefaultTimeout
	switch {
	case toolTimeout > 0 && ctxTimeout > 0:
		t = min(toolTimeout, ctxTimeout)
	case toolTimeout > 0:
		t = toolTimeout
	case ctxTimeout > 0:
		t = ctxTimeout
	}
	if c.MaxTimeout > 0 && t > c.MaxTimeout {
		t = c.MaxTimeout
	}
	return t
}
