package toolexecutor

import (
	"context"
	"sync"

	"github.com/danang/perkakas/pkg/tool"
)

// BatchCall is one entry of an ExecuteMany request.
type BatchCall struct {
	CallID string                 `json:"call_id"`
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ExecuteMany runs a list of calls under the configured concurrency cap.
// Calls are split into groups of at most MaxConcurrent; groups run one after
// another while calls within a group run concurrently. Every input call id
// is present in the returned map, failures included.
func (x *ToolExecutor) ExecuteMany(ctx context.Context, calls []BatchCall, ec *ExecutionContext) map[string]tool.Result {
	results := make(map[string]tool.Result, len(calls))
	if len(calls) == 0 {
		return results
	}
	if ec == nil {
		ec = x.CreateContext(ContextOptions{})
	}

	x.metrics.BatchExecutionsTotal.Inc()
	x.metrics.BatchSizeObserved.Observe(float64(len(calls)))

	groupSize := x.config.MaxConcurrent
	for begin := 0; begin < len(calls); begin += groupSize {
		end := min(begin+groupSize, len(calls))
		group := calls[begin:end]

		out := make([]tool.Result, len(group))
		var wg sync.WaitGroup
		for i, call := range group {
			wg.Add(1)
			go func(i int, call BatchCall) {
				defer wg.Done()
				out[i] = x.Execute(ctx, call.Tool, call.Params, ec.Child())
			}(i, call)
		}
		wg.Wait()

		for i, call := range group {
			results[call.CallID] = out[i]
		}
	}

	return results
}
