package toolexecutor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danang/perkakas/pkg/tool"
)

func TestCacheKey_Deterministic(t *testing.T) {
	a, ok := cacheKey("echo", map[string]interface{}{"text": "hi", "n": 1})
	require.True(t, ok)
	b, ok := cacheKey("echo", map[string]interface{}{"n": 1, "text": "hi"})
	require.True(t, ok)

	assert.Equal(t, a, b)
}

func TestCacheKey_DistinguishesToolAndParams(t *testing.T) {
	a, _ := cacheKey("echo", map[string]interface{}{"text": "hi"})
	b, _ := cacheKey("echo", map[string]interface{}{"text": "yo"})
	c, _ := cacheKey("other", map[string]interface{}{"text": "hi"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCacheKey_UnmarshallableParams(t *testing.T) {
	_, ok := cacheKey("echo", map[string]interface{}{"ch": make(chan int)})

	assert.False(t, ok)
}

func TestResultCache_PutGet(t *testing.T) {
	c := newResultCache(time.Minute)
	key, _ := cacheKey("echo", map[string]interface{}{"text": "hi"})

	_, hit := c.get(key)
	assert.False(t, hit)

	c.put(key, tool.Ok("cached content"))

	got, hit := c.get(key)
	require.True(t, hit)
	assert.Equal(t, "cached content", got.Content)
	require.NotNil(t, got.Metadata)
	assert.True(t, got.Metadata.Cached)
}

func TestResultCache_FailuresNotStored(t *testing.T) {
	c := newResultCache(time.Minute)
	key, _ := cacheKey("echo", nil)

	c.put(key, tool.Fail(tool.CodeExecutionError, "boom"))

	_, hit := c.get(key)
	assert.False(t, hit)
}

func TestResultCache_Expiry(t *testing.T) {
	c := newResultCache(20 * time.Millisecond)
	key, _ := cacheKey("echo", nil)

	c.put(key, tool.Ok("short lived"))
	_, hit := c.get(key)
	require.True(t, hit)

	time.Sleep(40 * time.Millisecond)

	_, hit = c.get(key)
	assert.False(t, hit)
}

func TestResultCache_StoredResultNotMutated(t *testing.T) {
	c := newResultCache(time.Minute)
	key, _ := cacheKey("echo", nil)

	c.put(key, tool.Ok("content"))

	first, _ := c.get(key)
	first.Metadata.Duration = time.Hour

	second, _ := c.get(key)
	assert.Equal(t, time.Duration(0), second.Metadata.Duration)
}
