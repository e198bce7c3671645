// Package registry owns the map of registered tools and their lifetime
// statistics.
//
// Invariants:
// - Tool names are unique; duplicate registration fails without mutating state.
// - Statistics are mutated only through RecordExecution.
// - Callers receive copies, never references into registry state.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/tool"
)

// LastError captures the most recent failed execution of a tool.
type LastError struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Stats are per-tool lifetime execution statistics.
type Stats struct {
	ExecutionCount int64         `json:"execution_count"`
	TotalDuration  time.Duration `json:"total_duration"`
	ErrorCount     int64         `json:"error_count"`
	LastError      *LastError    `json:"last_error,omitempty"`
	Registered     time.Time     `json:"registered"`
}

// Info is the read-only introspection view of a registered tool.
type Info struct {
	Definition tool.Definition `json:"definition"`
	Stats      Stats           `json:"stats"`
}

type entry struct {
	def     tool.Definition
	handler tool.Handler
	stats   Stats
}

// Registry is the process-wide store of tools. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tools: make(map[string]*entry)}
}

// Register validates and stores a tool definition bound to its handler.
// Fails with tool.ErrInvalidDefinition or tool.ErrDuplicateTool.
func (r *Registry) Register(def tool.Definition, handler tool.Handler) error {
	if err := tool.ValidateDefinition(def, handler); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", tool.ErrDuplicateTool, def.Name)
	}

	r.tools[def.Name] = &entry{
		def:     def,
		handler: handler,
		stats:   Stats{Registered: time.Now()},
	}

	log.Info().Str("tool", def.Name).Str("category", def.Category).Msg("Tool registered")
	return nil
}

// Unregister removes a tool. Reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)

	log.Info().Str("tool", name).Msg("Tool unregistered")
	return true
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Get returns a copy of a tool's definition.
func (r *Registry) Get(name string) (tool.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return tool.Definition{}, false
	}
	return e.def, true
}

// Resolve returns the definition and handler for execution.
func (r *Registry) Resolve(name string) (tool.Definition, tool.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return tool.Definition{}, nil, false
	}
	return e.def, e.handler, true
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Filter narrows List and ForModel output.
type Filter struct {
	Category  string
	Dangerous *bool
}

func (f Filter) match(def tool.Definition) bool {
	if f.Category != "" && def.Category != f.Category {
		return false
	}
	if f.Dangerous != nil && def.Dangerous != *f.Dangerous {
		return false
	}
	return true
}

// List returns the definitions matching the filter, sorted by name.
func (r *Registry) List(filter Filter) []tool.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]tool.Definition, 0, len(r.tools))
	for _, e := range r.tools {
		if filter.match(e.def) {
			defs = append(defs, e.def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ModelTool is the function-calling view of a tool handed to model providers.
type ModelTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ForModel renders the matching tools as model function declarations. Under
// sandbox mode, dangerous and exec-like tools are stripped.
func (r *Registry) ForModel(filter Filter, sandboxMode bool) []ModelTool {
	defs := r.List(filter)

	out := make([]ModelTool, 0, len(defs))
	for _, def := range defs {
		if sandboxMode && isExecLike(def) {
			continue
		}
		out = append(out, ModelTool{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters.JSONSchema(),
		})
	}
	return out
}

func isExecLike(def tool.Definition) bool {
	return def.Dangerous || def.Category == "shell" || strings.Contains(def.Name, "exec")
}

// Categories returns the sorted set of categories in use.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range r.tools {
		if e.def.Category != "" {
			seen[e.def.Category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// RecordExecution folds one execution outcome into a tool's statistics.
func (r *Registry) RecordExecution(name string, duration time.Duration, success bool, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tools[name]
	if !ok {
		return
	}

	e.stats.ExecutionCount++
	e.stats.TotalDuration += duration
	if !success {
		e.stats.ErrorCount++
		e.stats.LastError = &LastError{Message: errMsg, At: time.Now()}
	}
}

// Introspect returns the definition and statistics snapshot for one tool.
func (r *Registry) Introspect(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return Info{}, false
	}
	return Info{Definition: e.def, Stats: e.stats}, true
}

// StatsSnapshot returns a copy of every tool's statistics keyed by name.
func (r *Registry) StatsSnapshot() map[string]Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Stats, len(r.tools))
	for name, e := range r.tools {
		out[name] = e.stats
	}
	return out
}
