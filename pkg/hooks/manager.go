package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/tool"
)

type beforeEntry struct {
	hook BeforeHook
	seq  uint64
}

type afterEntry struct {
	hook AfterHook
	seq  uint64
}

type errorEntry struct {
	hook ErrorHook
	seq  uint64
}

// Manager owns the three hook chains. Safe for concurrent use; hooks added
// while a call is in flight take effect on the next call.
type Manager struct {
	mu     sync.RWMutex
	seq    uint64
	before []beforeEntry
	after  []afterEntry
	onErr  []errorEntry
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddBefore registers a before hook. Names are unique within the chain.
func (m *Manager) AddBefore(hook BeforeHook) error {
	if hook.Name == "" || hook.Fn == nil {
		return fmt.Errorf("before hook requires a name and a function")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.before {
		if e.hook.Name == hook.Name {
			return fmt.Errorf("before hook %q already registered", hook.Name)
		}
	}

	m.seq++
	m.before = append(m.before, beforeEntry{hook: hook, seq: m.seq})
	sort.SliceStable(m.before, func(i, j int) bool {
		if m.before[i].hook.Priority != m.before[j].hook.Priority {
			return m.before[i].hook.Priority > m.before[j].hook.Priority
		}
		return m.before[i].seq < m.before[j].seq
	})
	return nil
}

// AddAfter registers an after hook. Names are unique within the chain.
func (m *Manager) AddAfter(hook AfterHook) error {
	if hook.Name == "" || hook.Fn == nil {
		return fmt.Errorf("after hook requires a name and a function")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.after {
		if e.hook.Name == hook.Name {
			return fmt.Errorf("after hook %q already registered", hook.Name)
		}
	}

	m.seq++
	m.after = append(m.after, afterEntry{hook: hook, seq: m.seq})
	sort.SliceStable(m.after, func(i, j int) bool {
		if m.after[i].hook.Priority != m.after[j].hook.Priority {
			return m.after[i].hook.Priority > m.after[j].hook.Priority
		}
		return m.after[i].seq < m.after[j].seq
	})
	return nil
}

// AddError registers an error hook. Names are unique within the chain.
func (m *Manager) AddError(hook ErrorHook) error {
	if hook.Name == "" || hook.Fn == nil {
		return fmt.Errorf("error hook requires a name and a function")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.onErr {
		if e.hook.Name == hook.Name {
			return fmt.Errorf("error hook %q already registered", hook.Name)
		}
	}

	m.seq++
	m.onErr = append(m.onErr, errorEntry{hook: hook, seq: m.seq})
	sort.SliceStable(m.onErr, func(i, j int) bool {
		if m.onErr[i].hook.Priority != m.onErr[j].hook.Priority {
			return m.onErr[i].hook.Priority > m.onErr[j].hook.Priority
		}
		return m.onErr[i].seq < m.onErr[j].seq
	})
	return nil
}

// RemoveBefore removes a before hook by name.
func (m *Manager) RemoveBefore(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.before {
		if e.hook.Name == name {
			m.before = append(m.before[:i], m.before[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAfter removes an after hook by name.
func (m *Manager) RemoveAfter(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.after {
		if e.hook.Name == name {
			m.after = append(m.after[:i], m.after[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveError removes an error hook by name.
func (m *Manager) RemoveError(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.onErr {
		if e.hook.Name == name {
			m.onErr = append(m.onErr[:i], m.onErr[i+1:]...)
			return true
		}
	}
	return false
}

// BeforeOutcome is the aggregate result of the before chain.
type BeforeOutcome struct {
	Params  map[string]interface{}
	Blocked bool
	Reason  string
	Result  tool.Result
}

// RunBefore walks the before chain. Params modifications flow to subsequent
// hooks; the first blocking hook stops the chain. A hook that fails blocks
// the call with a HOOK_ERROR fallback.
func (m *Manager) RunBefore(ctx context.Context, call Call) BeforeOutcome {
	m.mu.RLock()
	chain := append([]beforeEntry(nil), m.before...)
	m.mu.RUnlock()

	params := call.Params
	for _, e := range chain {
		call.Params = params
		res, err := e.hook.Fn(ctx, call)
		if err != nil {
			log.Warn().
				Str("hook", e.hook.Name).
				Str("tool", call.Tool).
				Err(err).
				Msg("Before hook failed, blocking call")
			return BeforeOutcome{
				Params:  params,
				Blocked: true,
				Reason:  err.Error(),
				Result:  tool.Fail(tool.CodeHookError, fmt.Sprintf("hook %s failed: %v", e.hook.Name, err)),
			}
		}
		if res.Block {
			result := tool.Fail(tool.CodeHookBlocked, fmt.Sprintf("blocked by hook %s: %s", e.hook.Name, res.Reason))
			if res.Fallback != nil {
				result = *res.Fallback
			}
			return BeforeOutcome{
				Params:  params,
				Blocked: true,
				Reason:  res.Reason,
				Result:  result,
			}
		}
		if res.Params != nil {
			params = res.Params
		}
	}

	return BeforeOutcome{Params: params}
}

// RunAfter walks the after chain, threading the result through each hook.
// A failing hook is logged and skipped; the chain never aborts.
func (m *Manager) RunAfter(ctx context.Context, call Call, result tool.Result) tool.Result {
	m.mu.RLock()
	chain := append([]afterEntry(nil), m.after...)
	m.mu.RUnlock()

	for _, e := range chain {
		out, err := e.hook.Fn(ctx, call, result)
		if err != nil {
			log.Warn().
				Str("hook", e.hook.Name).
				Str("tool", call.Tool).
				Err(err).
				Msg("After hook failed, skipping")
			continue
		}
		result = out
	}
	return result
}

// RunError walks the error chain looking for a fallback result. Returns nil
// when no hook supplies one.
func (m *Manager) RunError(ctx context.Context, call Call, execErr error) *tool.Result {
	m.mu.RLock()
	chain := append([]errorEntry(nil), m.onErr...)
	m.mu.RUnlock()

	for _, e := range chain {
		fallback, err := e.hook.Fn(ctx, call, execErr)
		if err != nil {
			log.Warn().
				Str("hook", e.hook.Name).
				Str("tool", call.Tool).
				Err(err).
				Msg("Error hook failed, ignoring")
			continue
		}
		if fallback != nil {
			return fallback
		}
	}
	return nil
}
