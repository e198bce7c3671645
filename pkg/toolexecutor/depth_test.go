package toolexecutor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthGuard_AcquireRelease(t *testing.T) {
	g := newDepthGuard(2)

	require.NoError(t, g.acquire("run-1"))
	require.NoError(t, g.acquire("run-1"))
	assert.Error(t, g.acquire("run-1"))
	assert.Equal(t, 2, g.depth("run-1"))

	g.release("run-1")
	assert.NoError(t, g.acquire("run-1"))
}

func TestDepthGuard_RunsIsolated(t *testing.T) {
	g := newDepthGuard(1)

	require.NoError(t, g.acquire("run-1"))
	assert.NoError(t, g.acquire("run-2"))
	assert.Error(t, g.acquire("run-1"))
}

func TestDepthGuard_EntryDroppedAtZero(t *testing.T) {
	g := newDepthGuard(3)

	require.NoError(t, g.acquire("run-1"))
	g.release("run-1")

	g.mu.Lock()
	_, present := g.counts["run-1"]
	g.mu.Unlock()
	assert.False(t, present)
}

func TestDepthGuard_FailedAcquireClaimsNothing(t *testing.T) {
	g := newDepthGuard(1)

	require.NoError(t, g.acquire("run-1"))
	require.Error(t, g.acquire("run-1"))

	g.release("run-1")
	assert.Equal(t, 0, g.depth("run-1"))
}

func TestDepthGuard_Concurrent(t *testing.T) {
	g := newDepthGuard(5)

	var wg sync.WaitGroup
	var granted sync.Map
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := g.acquire("run-1"); err == nil {
				granted.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	granted.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	assert.Equal(t, 5, count)
	assert.Equal(t, 5, g.depth("run-1"))
}
