package hooks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/tool"
)

// Built-in hook priorities. Audit hooks run around everything else;
// confirmation runs just below so audit still sees blocked calls.
const (
	PriorityAudit        = 1000
	PriorityConfirmation = 900
)

// NewAuditBeforeHook logs every call entering the pipeline.
func NewAuditBeforeHook() BeforeHook {
	return BeforeHook{
		Name:     "audit",
		Priority: PriorityAudit,
		Fn: func(ctx context.Context, call Call) (BeforeResult, error) {
			log.Debug().
				Str("tool", call.Tool).
				Str("session_id", call.SessionID).
				Str("run_id", call.RunID).
				Str("tool_call_id", call.ToolCallID).
				Msg("Tool call started")
			return BeforeResult{}, nil
		},
	}
}

// NewAuditAfterHook logs every call leaving the pipeline.
func NewAuditAfterHook() AfterHook {
	return AfterHook{
		Name:     "audit",
		Priority: PriorityAudit,
		Fn: func(ctx context.Context, call Call, result tool.Result) (tool.Result, error) {
			evt := log.Debug().
				Str("tool", call.Tool).
				Str("tool_call_id", call.ToolCallID).
				Bool("success", result.Success)
			if result.Error != nil {
				evt = evt.Str("error_code", result.Error.Code)
			}
			if result.Metadata != nil {
				evt = evt.Dur("duration", result.Metadata.Duration)
			}
			evt.Msg("Tool call finished")
			return result, nil
		},
	}
}

// Approver decides whether a guarded call may proceed.
type Approver interface {
	Approve(ctx context.Context, call Call) (bool, string, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, call Call) (bool, string, error)

// Approve implements Approver.
func (f ApproverFunc) Approve(ctx context.Context, call Call) (bool, string, error) {
	return f(ctx, call)
}

// NewConfirmationHook blocks tools whose names match one of the patterns
// unless the approver grants the call. A nil approver denies everything
// matched.
func NewConfirmationHook(patterns []string, approver Approver) BeforeHook {
	return BeforeHook{
		Name:     "confirmation",
		Priority: PriorityConfirmation,
		Fn: func(ctx context.Context, call Call) (BeforeResult, error) {
			if !matchesAny(patterns, call.Tool) {
				return BeforeResult{}, nil
			}

			if approver == nil {
				return BeforeResult{
					Block:  true,
					Reason: "confirmation required but no approver configured",
				}, nil
			}

			approved, reason, err := approver.Approve(ctx, call)
			if err != nil {
				return BeforeResult{}, fmt.Errorf("approval request failed: %w", err)
			}
			if !approved {
				log.Warn().
					Str("tool", call.Tool).
					Str("reason", reason).
					Msg("Tool call denied by approver")
				return BeforeResult{Block: true, Reason: reason}, nil
			}

			log.Info().
				Str("tool", call.Tool).
				Str("reason", reason).
				Msg("Tool call approved")
			return BeforeResult{}, nil
		},
	}
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == name || pattern == "*" {
			return true
		}
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
