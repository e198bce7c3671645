// Package hooks provides the before/after/error interception chains wrapped
// around every tool execution.
//
// Invariants:
// - Chains run in descending priority order, ties broken by registration order.
// - Before hooks may rewrite params or block the call; the first block wins.
// - After hooks replace the result; a failing after hook is skipped.
// - Error hooks may supply a fallback result; the first non-nil fallback wins.
package hooks

import (
	"context"

	"github.com/danang/perkakas/pkg/tool"
)

// Call identifies the tool invocation a hook is observing.
type Call struct {
	Tool       string
	Params     map[string]interface{}
	SessionID  string
	RunID      string
	ToolCallID string
	UserID     string
}

// BeforeResult is what a before hook returns. A nil Params leaves the
// current params unchanged; Block stops the call with Fallback (or a generic
// blocked result) handed back to the caller.
type BeforeResult struct {
	Params   map[string]interface{}
	Block    bool
	Reason   string
	Fallback *tool.Result
}

// BeforeFunc inspects or rewrites a call before the handler runs. Returning
// an error blocks the call with a HOOK_ERROR result.
type BeforeFunc func(ctx context.Context, call Call) (BeforeResult, error)

// AfterFunc transforms the result of a completed call. Returning an error
// discards this hook's output; the previous result flows on unchanged.
type AfterFunc func(ctx context.Context, call Call, result tool.Result) (tool.Result, error)

// ErrorFunc is invoked when the handler itself failed. Returning a non-nil
// result substitutes it for the error; returning nil defers to the next hook.
type ErrorFunc func(ctx context.Context, call Call, execErr error) (*tool.Result, error)

// BeforeHook is a named, prioritized before-phase hook.
type BeforeHook struct {
	Name     string
	Priority int
	Fn       BeforeFunc
}

// AfterHook is a named, prioritized after-phase hook.
type AfterHook struct {
	Name     string
	Priority int
	Fn       AfterFunc
}

// ErrorHook is a named, prioritized error-phase hook.
type ErrorHook struct {
	Name     string
	Priority int
	Fn       ErrorFunc
}
