package toolexecutor

import (
	"context"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/tool"
)

// ProgressFunc receives progress emitted by streaming handlers.
type ProgressFunc func(message string, percent float64)

// ExecutionContext is the per-call bundle of identity, permissions,
// cancellation budget, logging, and nested-invoke capability. Effectively
// immutable after creation; nested calls get a Child copy.
type ExecutionContext struct {
	SessionID  string
	RunID      string
	ToolCallID string
	UserID     string

	Permissions []string
	SandboxMode bool

	WorkingDir string
	Env        map[string]string

	// Timeout is this call's budget. The executor still caps it at the
	// global maximum.
	Timeout  time.Duration
	deadline time.Time

	Logger       zerolog.Logger
	EmitProgress ProgressFunc

	runtime *ToolExecutor
}

// ContextOptions are the caller-supplied inputs to CreateContext. Zero-value
// fields receive generated ids and configured defaults.
type ContextOptions struct {
	SessionID    string
	RunID        string
	ToolCallID   string
	UserID       string
	Permissions  []string
	SandboxMode  *bool
	WorkingDir   string
	Env          map[string]string
	Timeout      time.Duration
	Logger       *zerolog.Logger
	EmitProgress ProgressFunc
}

// CreateContext builds an execution context bound to this executor so that
// handlers can invoke nested tools.
func (x *ToolExecutor) CreateContext(opts ContextOptions) *ExecutionContext {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	toolCallID := opts.ToolCallID
	if toolCallID == "" {
		toolCallID = newToolCallID()
	}

	sandboxMode := x.config.DefaultSandboxMode
	if opts.SandboxMode != nil {
		sandboxMode = *opts.SandboxMode
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = x.config.DefaultTimeout
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().
		Str("session_id", sessionID).
		Str("run_id", runID).
		Logger()

	return &ExecutionContext{
		SessionID:    sessionID,
		RunID:        runID,
		ToolCallID:   toolCallID,
		UserID:       opts.UserID,
		Permissions:  append([]string(nil), opts.Permissions...),
		SandboxMode:  sandboxMode,
		WorkingDir:   opts.WorkingDir,
		Env:          opts.Env,
		Timeout:      timeout,
		deadline:     time.Now().Add(timeout),
		Logger:       logger,
		EmitProgress: opts.EmitProgress,
		runtime:      x,
	}
}

// Child derives the context for a nested call: same identity and grants, a
// fresh tool-call id, and a timeout capped at min(parent remaining, parent
// timeout).
func (ec *ExecutionContext) Child() *ExecutionContext {
	child := *ec
	child.ToolCallID = newToolCallID()

	timeout := ec.Timeout
	if remaining := time.Until(ec.deadline); remaining < timeout {
		timeout = remaining
	}
	child.Timeout = timeout
	child.deadline = time.Now().Add(timeout)
	return &child
}

// InvokeTool routes a nested call back into the executor under a child
// context. The per-run depth guard applies.
func (ec *ExecutionContext) InvokeTool(ctx context.Context, name string, params map[string]interface{}) tool.Result {
	if ec.runtime == nil {
		return tool.Fail(tool.CodeExecutionError, "nested invocation is not available on this context")
	}
	return ec.runtime.Execute(ctx, name, params, ec.Child())
}

func newToolCallID() string {
	id, err := gonanoid.New()
	if err != nil {
		return uuid.NewString()
	}
	return id
}

type execContextKey struct{}

// ContextWithExecContext attaches the execution context to a context.Context
// for tool handlers.
func ContextWithExecContext(ctx context.Context, execCtx *ExecutionContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if execCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, execContextKey{}, execCtx)
}

// ExecContextFromContext extracts the execution context from a
// context.Context. Returns nil when none is attached.
func ExecContextFromContext(ctx context.Context) *ExecutionContext {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(execContextKey{}); v != nil {
		if execCtx, ok := v.(*ExecutionContext); ok {
			return execCtx
		}
	}
	return nil
}
