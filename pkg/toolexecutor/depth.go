package toolexecutor

import (
	"fmt"
	"sync"
)

// depthGuard bounds nested tool invocation per run. Counters are keyed by
// run id and removed when they reach zero.
type depthGuard struct {
	mu       sync.Mutex
	maxDepth int
	counts   map[string]int
}

func newDepthGuard(maxDepth int) *depthGuard {
	return &depthGuard{
		maxDepth: maxDepth,
		counts:   make(map[string]int),
	}
}

// acquire claims one nesting level for the run. Fails when the bound would
// be exceeded, in which case no level is claimed.
func (g *depthGuard) acquire(runID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.counts[runID] >= g.maxDepth {
		return fmt.Errorf("max tool call depth %d exceeded for run %s", g.maxDepth, runID)
	}
	g.counts[runID]++
	return nil
}

// release gives back one nesting level, dropping the run's entry at zero.
func (g *depthGuard) release(runID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counts[runID]--
	if g.counts[runID] <= 0 {
		delete(g.counts, runID)
	}
}

// depth reports the current nesting level of a run.
func (g *depthGuard) depth(runID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[runID]
}
