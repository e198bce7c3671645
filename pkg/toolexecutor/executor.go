package toolexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danang/perkakas/pkg/compress"
	"github.com/danang/perkakas/pkg/hooks"
	"github.com/danang/perkakas/pkg/permission"
	"github.com/danang/perkakas/pkg/schema"
	"github.com/danang/perkakas/pkg/tool"
)

// execError is the internal control-flow error for request-time failures
// between lookup and normalization. The executor maps it to a typed result;
// it never escapes to the caller.
type execError struct {
	code    string
	message string
	details interface{}
}

func (e *execError) Error() string {
	return e.message
}

// Execute runs one tool call through the full pipeline: before hooks,
// validation, permission check, time-bounded invocation, after hooks,
// compression, and stats. It never returns a Go error; every failure is a
// typed result.
func (x *ToolExecutor) Execute(ctx context.Context, name string, params map[string]interface{}, ec *ExecutionContext) tool.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if ec == nil {
		ec = x.CreateContext(ContextOptions{})
	}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return tool.Fail(tool.CodeAborted, "execution aborted before start")
	}

	if err := x.depth.acquire(ec.RunID); err != nil {
		x.metrics.DepthLimitHitsTotal.Inc()
		ec.Logger.Warn().Str("tool", name).Err(err).Msg("Depth limit exceeded")
		return tool.Fail(tool.CodeMaxDepthExceeded, err.Error())
	}
	defer x.depth.release(ec.RunID)

	x.metrics.ExecutionsActive.Inc()
	defer x.metrics.ExecutionsActive.Dec()

	def, handler, ok := x.registry.Resolve(name)
	if !ok {
		ec.Logger.Error().Str("tool", name).Msg("Tool not found")
		return x.finish(name, start, tool.Fail(tool.CodeToolNotFound, fmt.Sprintf("tool not found: %s", name)), false)
	}

	if ec.SandboxMode && !x.sandboxAllowed(name) {
		ec.Logger.Warn().Str("tool", name).Msg("Tool blocked by sandbox")
		return x.finish(name, start, tool.Fail(tool.CodeSandboxBlocked, fmt.Sprintf("tool %s is not allowed in sandbox mode", name)), true)
	}

	call := hooks.Call{
		Tool:       name,
		Params:     params,
		SessionID:  ec.SessionID,
		RunID:      ec.RunID,
		ToolCallID: ec.ToolCallID,
		UserID:     ec.UserID,
	}

	outcome := x.hooks.RunBefore(ctx, call)
	if outcome.Blocked {
		x.metrics.HookBlocksTotal.WithLabelValues(name).Inc()
		ec.Logger.Warn().Str("tool", name).Str("reason", outcome.Reason).Msg("Tool call blocked by hook")
		return x.finish(name, start, outcome.Result, true)
	}
	call.Params = outcome.Params

	ec.Logger.Debug().Str("tool", name).Str("tool_call_id", ec.ToolCallID).Msg("Executing tool")

	result, execErr := x.invoke(ctx, def, handler, call.Params, ec)
	if execErr != nil {
		if fallback := x.hooks.RunError(ctx, call, execErr); fallback != nil {
			return x.finish(name, start, *fallback, true)
		}
		return x.finish(name, start, errorResult(execErr), true)
	}

	result = result.WithDuration(time.Since(start))
	result = x.hooks.RunAfter(ctx, call, result)
	result = x.compressResult(result)

	return x.finish(name, start, result, true)
}

// invoke validates, permission-checks, and runs the handler racing normal
// return, timeout expiry, and cancellation. Failures come back as *execError.
func (x *ToolExecutor) invoke(ctx context.Context, def tool.Definition, handler tool.Handler, params map[string]interface{}, ec *ExecutionContext) (tool.Result, error) {
	coerced, verrs := schema.Validate(params, def.Parameters)
	if len(verrs) > 0 {
		return tool.Result{}, &execError{
			code:    tool.CodeValidationError,
			message: fmt.Sprintf("parameter validation failed: %s", validationSummary(verrs)),
			details: verrs,
		}
	}

	decision := permission.Check(def.Permissions, ec.Permissions)
	if !decision.Allowed {
		return tool.Result{}, &execError{
			code:    tool.CodePermissionDenied,
			message: fmt.Sprintf("missing permissions: %s", strings.Join(decision.Missing, ", ")),
			details: decision.Missing,
		}
	}

	var key uint64
	cacheable := false
	if x.cache != nil && def.Cacheable {
		if k, ok := cacheKey(def.Name, coerced); ok {
			key = k
			cacheable = true
			if cached, hit := x.cache.get(key); hit {
				x.metrics.CacheHitsTotal.Inc()
				ec.Logger.Debug().Str("tool", def.Name).Msg("Result served from cache")
				return cached, nil
			}
		}
	}

	timeout := x.config.effectiveTimeout(def.Timeout, ec.Timeout)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	runCtx = ContextWithExecContext(runCtx, ec)

	type handlerOutcome struct {
		value interface{}
		err   error
	}
	done := make(chan handlerOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- handlerOutcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		value, err := handler(runCtx, coerced)
		done <- handlerOutcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			switch {
			case errors.Is(o.err, context.DeadlineExceeded):
				return tool.Result{}, &execError{code: tool.CodeTimeout, message: fmt.Sprintf("tool execution timeout after %v", timeout)}
			case errors.Is(o.err, context.Canceled):
				return tool.Result{}, &execError{code: tool.CodeAborted, message: "execution aborted"}
			default:
				return tool.Result{}, &execError{code: tool.CodeExecutionError, message: o.err.Error()}
			}
		}
		result := tool.Normalize(o.value)
		if cacheable {
			x.cache.put(key, result)
		}
		return result, nil

	case <-runCtx.Done():
		if ctx.Err() != nil {
			return tool.Result{}, &execError{code: tool.CodeAborted, message: "execution aborted"}
		}
		return tool.Result{}, &execError{code: tool.CodeTimeout, message: fmt.Sprintf("tool execution timeout after %v", timeout)}
	}
}

// finish attaches duration metadata, records stats and metrics, and returns
// the final result. Stats are skipped when there is no tool to record
// against.
func (x *ToolExecutor) finish(name string, start time.Time, result tool.Result, recordStats bool) tool.Result {
	duration := time.Since(start)
	result = result.WithDuration(duration)

	status := "ok"
	errMsg := ""
	if !result.Success {
		status = tool.CodeUnknownError
		if result.Error != nil {
			status = result.Error.Code
			errMsg = result.Error.Message
		} else {
			errMsg = result.Content
		}
	}

	if recordStats {
		x.registry.RecordExecution(name, duration, result.Success, errMsg)
	}

	x.metrics.ToolExecutionsTotal.WithLabelValues(name, status).Inc()
	x.metrics.ToolExecutionDuration.WithLabelValues(name).Observe(duration.Seconds())
	if !result.Success {
		x.metrics.ToolExecutionErrorsTotal.WithLabelValues(name, status).Inc()
	}

	return result
}

func (x *ToolExecutor) compressResult(result tool.Result) tool.Result {
	if len(result.Content) <= x.config.MaxResultLength {
		return result
	}
	x.metrics.ResultsCompressed.Inc()
	return compress.Compress(result, x.config.MaxResultLength, x.config.TruncationStrategy)
}

func errorResult(err error) tool.Result {
	var ee *execError
	if errors.As(err, &ee) {
		return tool.FailWithDetails(ee.code, ee.message, ee.details)
	}
	return tool.Fail(tool.CodeUnknownError, err.Error())
}

func validationSummary(errs []schema.ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
