package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danang/perkakas/pkg/schema"
	"github.com/danang/perkakas/pkg/tool"
)

func testHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return "ok", nil
}

func testDef(name string) tool.Definition {
	return tool.Definition{
		Name:        name,
		Description: "A test tool.",
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"input": {Type: schema.TypeString},
			},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	r := New()

	err := r.Register(testDef("alpha"), testHandler)

	require.NoError(t, err)
	assert.True(t, r.Has("alpha"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	r := New()

	err := r.Register(tool.Definition{Name: "2bad"}, testHandler)

	assert.ErrorIs(t, err, tool.ErrInvalidDefinition)
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	err := r.Register(testDef("alpha"), testHandler)

	assert.ErrorIs(t, err, tool.ErrDuplicateTool)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_UnregisterAndReregister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	assert.True(t, r.Unregister("alpha"))
	assert.False(t, r.Has("alpha"))
	assert.False(t, r.Unregister("alpha"))

	// The name is free again after unregistration.
	assert.NoError(t, r.Register(testDef("alpha"), testHandler))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	def, ok := r.Get("alpha")
	require.True(t, ok)
	def.Description = "mutated"

	again, _ := r.Get("alpha")
	assert.Equal(t, "A test tool.", again.Description)
}

func TestRegistry_Resolve(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	def, handler, ok := r.Resolve("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", def.Name)
	assert.NotNil(t, handler)

	_, _, ok = r.Resolve("missing")
	assert.False(t, ok)
}

func TestRegistry_ListSortedAndFiltered(t *testing.T) {
	r := New()

	readDef := testDef("read_file")
	readDef.Category = "read"
	writeDef := testDef("write_file")
	writeDef.Category = "write"
	writeDef.Dangerous = true

	require.NoError(t, r.Register(writeDef, testHandler))
	require.NoError(t, r.Register(readDef, testHandler))

	all := r.List(Filter{})
	require.Len(t, all, 2)
	assert.Equal(t, "read_file", all[0].Name)
	assert.Equal(t, "write_file", all[1].Name)

	reads := r.List(Filter{Category: "read"})
	require.Len(t, reads, 1)
	assert.Equal(t, "read_file", reads[0].Name)

	dangerous := true
	hot := r.List(Filter{Dangerous: &dangerous})
	require.Len(t, hot, 1)
	assert.Equal(t, "write_file", hot[0].Name)
}

func TestRegistry_ForModel(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("read_file"), testHandler))

	tools := r.ForModel(Filter{}, false)

	require.Len(t, tools, 1)
	assert.Equal(t, "read_file", tools[0].Name)
	assert.Equal(t, "object", tools[0].Parameters["type"])
}

func TestRegistry_ForModelSandboxStripsExecLike(t *testing.T) {
	r := New()

	shellDef := testDef("run_shell")
	shellDef.Category = "shell"
	dangerDef := testDef("write_file")
	dangerDef.Dangerous = true
	execDef := testDef("code_exec")
	safeDef := testDef("read_file")

	for _, def := range []tool.Definition{shellDef, dangerDef, execDef, safeDef} {
		require.NoError(t, r.Register(def, testHandler))
	}

	tools := r.ForModel(Filter{}, true)
	require.Len(t, tools, 1)
	assert.Equal(t, "read_file", tools[0].Name)

	// Outside sandbox mode everything is visible.
	assert.Len(t, r.ForModel(Filter{}, false), 4)
}

func TestRegistry_Categories(t *testing.T) {
	r := New()

	a := testDef("a")
	a.Category = "write"
	b := testDef("b")
	b.Category = "read"
	c := testDef("c")

	for _, def := range []tool.Definition{a, b, c} {
		require.NoError(t, r.Register(def, testHandler))
	}

	assert.Equal(t, []string{"read", "write"}, r.Categories())
}

func TestRegistry_RecordExecution(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	r.RecordExecution("alpha", 10*time.Millisecond, true, "")
	r.RecordExecution("alpha", 20*time.Millisecond, false, "boom")
	r.RecordExecution("missing", time.Millisecond, true, "")

	info, ok := r.Introspect("alpha")
	require.True(t, ok)
	assert.Equal(t, int64(2), info.Stats.ExecutionCount)
	assert.Equal(t, 30*time.Millisecond, info.Stats.TotalDuration)
	assert.Equal(t, int64(1), info.Stats.ErrorCount)
	require.NotNil(t, info.Stats.LastError)
	assert.Equal(t, "boom", info.Stats.LastError.Message)
}

func TestRegistry_StatsSnapshot(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))
	r.RecordExecution("alpha", time.Millisecond, true, "")

	snap := r.StatsSnapshot()

	require.Contains(t, snap, "alpha")
	assert.Equal(t, int64(1), snap["alpha"].ExecutionCount)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDef("alpha"), testHandler))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordExecution("alpha", time.Millisecond, true, "")
			_, _, _ = r.Resolve("alpha")
			_ = r.List(Filter{})
		}()
	}
	wg.Wait()

	info, ok := r.Introspect("alpha")
	require.True(t, ok)
	assert.Equal(t, int64(20), info.Stats.ExecutionCount)
}
