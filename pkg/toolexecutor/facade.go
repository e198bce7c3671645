package toolexecutor

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/internal/metrics"
	"github.com/danang/perkakas/pkg/hooks"
	"github.com/danang/perkakas/pkg/permission"
	"github.com/danang/perkakas/pkg/registry"
	"github.com/danang/perkakas/pkg/schema"
	"github.com/danang/perkakas/pkg/tool"
)

// ToolExecutor is the public surface of the execution core: registry, hook
// chains, executor, context factory, and the nested-call depth guard.
type ToolExecutor struct {
	config   Config
	registry *registry.Registry
	hooks    *hooks.Manager
	depth    *depthGuard
	cache    *resultCache
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	sandboxList *SandboxList
}

// New creates a ToolExecutor from a validated configuration.
func New(cfg Config) (*ToolExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid executor config: %w", err)
	}

	x := &ToolExecutor{
		config:   cfg,
		registry: registry.New(),
		hooks:    hooks.NewManager(),
		depth:    newDepthGuard(cfg.MaxDepth),
		metrics:  metrics.NewMetrics(),
	}
	if cfg.EnableCaching {
		x.cache = newResultCache(cfg.CacheMaxAge)
	}

	log.Info().
		Dur("default_timeout", cfg.DefaultTimeout).
		Int("max_concurrent", cfg.MaxConcurrent).
		Int("max_depth", cfg.MaxDepth).
		Msg("Tool executor initialized")

	return x, nil
}

// Configuration returns the executor's configuration.
func (x *ToolExecutor) Configuration() Config {
	return x.config
}

// Register validates and registers a tool definition with its handler.
func (x *ToolExecutor) Register(def tool.Definition, handler tool.Handler) error {
	return x.registry.Register(def, handler)
}

// Unregister removes a tool. Reports whether it was present.
func (x *ToolExecutor) Unregister(name string) bool {
	return x.registry.Unregister(name)
}

// Has reports whether a tool is registered.
func (x *ToolExecutor) Has(name string) bool {
	return x.registry.Has(name)
}

// Get returns a copy of a tool's definition.
func (x *ToolExecutor) Get(name string) (tool.Definition, bool) {
	return x.registry.Get(name)
}

// List returns the definitions matching the filter.
func (x *ToolExecutor) List(filter registry.Filter) []tool.Definition {
	return x.registry.List(filter)
}

// GetForModel renders matching tools as model function declarations,
// stripping dangerous and exec-like tools when sandbox mode is requested.
func (x *ToolExecutor) GetForModel(filter registry.Filter, sandboxMode bool) []registry.ModelTool {
	return x.registry.ForModel(filter, sandboxMode)
}

// Categories returns the sorted set of categories in use.
func (x *ToolExecutor) Categories() []string {
	return x.registry.Categories()
}

// Introspect returns the definition and statistics snapshot for one tool.
func (x *ToolExecutor) Introspect(name string) (registry.Info, bool) {
	return x.registry.Introspect(name)
}

// GetStats returns a copy of every tool's statistics keyed by name.
func (x *ToolExecutor) GetStats() map[string]registry.Stats {
	return x.registry.StatsSnapshot()
}

// ValidationReport is the outcome of a dry-run validation.
type ValidationReport struct {
	Valid   bool                     `json:"valid"`
	Errors  []schema.ValidationError `json:"errors,omitempty"`
	Coerced map[string]interface{}   `json:"coerced,omitempty"`
}

// Validate dry-runs parameter validation for a tool. No hooks run and no
// statistics are recorded.
func (x *ToolExecutor) Validate(name string, params map[string]interface{}) (ValidationReport, error) {
	def, ok := x.registry.Get(name)
	if !ok {
		return ValidationReport{}, fmt.Errorf("%w: %s", tool.ErrToolNotFound, name)
	}

	coerced, errs := schema.Validate(params, def.Parameters)
	if len(errs) > 0 {
		return ValidationReport{Valid: false, Errors: errs}, nil
	}
	return ValidationReport{Valid: true, Coerced: coerced}, nil
}

// AddBeforeHook registers a before hook.
func (x *ToolExecutor) AddBeforeHook(hook hooks.BeforeHook) error {
	return x.hooks.AddBefore(hook)
}

// AddAfterHook registers an after hook.
func (x *ToolExecutor) AddAfterHook(hook hooks.AfterHook) error {
	return x.hooks.AddAfter(hook)
}

// AddErrorHook registers an error hook.
func (x *ToolExecutor) AddErrorHook(hook hooks.ErrorHook) error {
	return x.hooks.AddError(hook)
}

// RemoveBeforeHook removes a before hook by name.
func (x *ToolExecutor) RemoveBeforeHook(name string) bool {
	return x.hooks.RemoveBefore(name)
}

// RemoveAfterHook removes an after hook by name.
func (x *ToolExecutor) RemoveAfterHook(name string) bool {
	return x.hooks.RemoveAfter(name)
}

// RemoveErrorHook removes an error hook by name.
func (x *ToolExecutor) RemoveErrorHook(name string) bool {
	return x.hooks.RemoveError(name)
}

// InstallDefaultHooks adds the audit hooks and, when the configuration lists
// tools requiring confirmation, the confirmation hook backed by the given
// approver.
func (x *ToolExecutor) InstallDefaultHooks(approver hooks.Approver) error {
	if err := x.hooks.AddBefore(hooks.NewAuditBeforeHook()); err != nil {
		return err
	}
	if err := x.hooks.AddAfter(hooks.NewAuditAfterHook()); err != nil {
		return err
	}
	if len(x.config.RequireConfirmationFor) > 0 {
		if err := x.hooks.AddBefore(hooks.NewConfirmationHook(x.config.RequireConfirmationFor, approver)); err != nil {
			return err
		}
	}
	return nil
}

// SetSandboxList installs a file-backed sandbox list, overriding the static
// allow/deny lists from the configuration.
func (x *ToolExecutor) SetSandboxList(sl *SandboxList) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sandboxList = sl
}

func (x *ToolExecutor) sandboxAllowed(name string) bool {
	x.mu.RLock()
	sl := x.sandboxList
	x.mu.RUnlock()

	if sl != nil {
		return sl.Allowed(name)
	}
	return permission.IsSandboxAllowed(name, x.config.SandboxAllowlist, x.config.SandboxDenylist)
}

// MetricsHandler returns the Prometheus scrape handler for this executor.
func (x *ToolExecutor) MetricsHandler() http.Handler {
	return x.metrics.Handler()
}
