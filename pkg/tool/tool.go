// Package tool defines the shared vocabulary of the execution runtime: tool
// definitions, handlers, typed results, and the error taxonomy.
package tool

import (
	"context"
	"errors"
	"time"

	"github.com/danang/perkakas/pkg/schema"
)

// Handler is the function every capability provider supplies. Handlers read
// the execution context through toolexecutor.ExecContextFromContext.
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// RateLimit declares how often a tool may be called.
type RateLimit struct {
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
}

// Example is a usage sample attached to a definition.
type Example struct {
	Input  map[string]interface{} `json:"input"`
	Output string                 `json:"output"`
}

// Definition is the immutable description of a tool. It is validated once at
// registration and never mutated afterwards.
type Definition struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  schema.Object `json:"parameters"`

	Category    string     `json:"category,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	Dangerous   bool       `json:"dangerous,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	RateLimit   *RateLimit `json:"rate_limit,omitempty"`
	Cacheable   bool       `json:"cacheable,omitempty"`
	Streaming   bool       `json:"streaming,omitempty"`
	Examples    []Example  `json:"examples,omitempty"`
}

// Registration-time errors. These are returned to the caller; a capability
// that fails to load does not take the process down.
var (
	ErrInvalidDefinition = errors.New("invalid tool definition")
	ErrDuplicateTool     = errors.New("duplicate tool")
	ErrToolNotFound      = errors.New("tool not found")
)

// Request-time error codes, surfaced on Result.Error.Code. Execution never
// returns these as Go errors past the executor boundary.
const (
	CodeToolNotFound     = "TOOL_NOT_FOUND"
	CodeValidationError  = "VALIDATION_ERROR"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeTimeout          = "TIMEOUT"
	CodeAborted          = "ABORTED"
	CodeMaxDepthExceeded = "MAX_DEPTH_EXCEEDED"
	CodeSandboxBlocked   = "SANDBOX_BLOCKED"
	CodeHookBlocked      = "HOOK_BLOCKED"
	CodeHookError        = "HOOK_ERROR"
	CodeExecutionError   = "EXECUTION_ERROR"
	CodeUnknownError     = "UNKNOWN_ERROR"
)

// ErrorDetail carries the typed failure attached to an unsuccessful result.
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Metadata is per-result bookkeeping attached by the executor.
type Metadata struct {
	Duration       time.Duration `json:"duration"`
	Truncated      bool          `json:"truncated,omitempty"`
	OriginalLength int           `json:"original_length,omitempty"`
	Cached         bool          `json:"cached,omitempty"`
}

// Result is the value every execution returns. Hooks replace results rather
// than mutating them in place.
type Result struct {
	Content  string       `json:"content"`
	Success  bool         `json:"success"`
	Data     interface{}  `json:"data,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
	Metadata *Metadata    `json:"metadata,omitempty"`
}

// Ok builds a successful result with the given content.
func Ok(content string) Result {
	return Result{Content: content, Success: true}
}

// Fail builds a failed result with a typed error.
func Fail(code, message string) Result {
	return Result{
		Content: message,
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message},
	}
}

// FailWithDetails builds a failed result carrying structured error details.
func FailWithDetails(code, message string, details interface{}) Result {
	r := Fail(code, message)
	r.Error.Details = details
	return r
}

// WithDuration returns a copy of the result with duration metadata attached.
func (r Result) WithDuration(d time.Duration) Result {
	meta := Metadata{}
	if r.Metadata != nil {
		meta = *r.Metadata
	}
	meta.Duration = d
	r.Metadata = &meta
	return r
}
