// Package toolexecutor is the execution core of the runtime: it turns a
// registered tool name plus caller-supplied parameters into a validated,
// permission-checked, time-bounded, observable result.
//
// Invariants:
// - Execute never returns a Go error to the caller; failures are typed results.
// - Effective timeout is min(tool timeout, context timeout, global max).
// - Nested invocation depth per run is bounded before any handler runs.
// - Oversized content is compressed with truncation bookkeeping.
//
// Usage:
//
//	exec, _ := toolexecutor.New(toolexecutor.DefaultConfig())
//	_ = exec.Register(tool.Definition{
//		Name:        "echo",
//		Description: "Echo input",
//		Parameters: schema.Object{
//			Properties: map[string]schema.Property{"text": {Type: schema.TypeString}},
//			Required:   []string{"text"},
//		},
//	}, func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
//		return params["text"], nil
//	})
//	ec := exec.CreateContext(toolexecutor.ContextOptions{Permissions: []string{"*"}})
//	result := exec.Execute(ctx, "echo", map[string]interface{}{"text": "hi"}, ec)
package toolexecutor
