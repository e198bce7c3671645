package toolexecutor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/danang/perkakas/pkg/tool"
)

// resultCache memoises successful results of cacheable tools. Entries are
// keyed by tool name plus a hash of the canonically-marshalled params and
// expire after maxAge. Failed results are never stored.
type resultCache struct {
	mu      sync.RWMutex
	maxAge  time.Duration
	entries map[uint64]cacheEntry
}

type cacheEntry struct {
	result  tool.Result
	expires time.Time
}

func newResultCache(maxAge time.Duration) *resultCache {
	return &resultCache{
		maxAge:  maxAge,
		entries: make(map[uint64]cacheEntry),
	}
}

// cacheKey hashes the tool name and params. encoding/json sorts map keys,
// which makes the marshalled form canonical. Unmarshallable params are
// reported as uncacheable.
func cacheKey(name string, params map[string]interface{}) (uint64, bool) {
	data, err := json.Marshal(params)
	if err != nil {
		return 0, false
	}

	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return h.Sum64(), true
}

func (c *resultCache) get(key uint64) (tool.Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return tool.Result{}, false
	}

	result := entry.result
	meta := tool.Metadata{}
	if result.Metadata != nil {
		meta = *result.Metadata
	}
	meta.Cached = true
	result.Metadata = &meta
	return result, true
}

func (c *resultCache) put(key uint64, result tool.Result) {
	if !result.Success {
		return
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{result: result, expires: now.Add(c.maxAge)}
}
