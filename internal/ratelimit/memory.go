package ratelimit

import "sync"

// maxMemoryEntries bounds the fallback tier so a burst of unique identifiers
// cannot grow the map without limit.
const maxMemoryEntries = 10000

type memoryWindow struct {
	count     int64
	expiresMs int64
}

// memoryTier is the in-process fallback backend. Each increment is a single
// mutex-guarded map operation so concurrent attempts cannot both observe the
// pre-increment count.
type memoryTier struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

func newMemoryTier() *memoryTier {
	return &memoryTier{
		windows: make(map[string]*memoryWindow),
	}
}

// incr increments the counter for the given window key, creating it with the
// supplied expiry when absent, and returns the post-increment count. Expiry
// is judged against the caller's clock so both tiers agree on window
// boundaries.
func (t *memoryTier) incr(key string, nowMs, expiresMs int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, exists := t.windows[key]
	if exists && nowMs < w.expiresMs {
		w.count++
		return w.count
	}

	if len(t.windows) >= maxMemoryEntries {
		t.evict(nowMs)
	}

	t.windows[key] = &memoryWindow{count: 1, expiresMs: expiresMs}

	return 1
}

// evict removes expired windows and, if the map is still full,
// the window closest to expiry.
func (t *memoryTier) evict(nowMs int64) {
	for key, w := range t.windows {
		if nowMs >= w.expiresMs {
			delete(t.windows, key)
		}
	}

	if len(t.windows) < maxMemoryEntries {
		return
	}

	var (
		oldestKey string
		oldestMs  int64
	)

	for key, w := range t.windows {
		if oldestKey == "" || w.expiresMs < oldestMs {
			oldestKey = key
			oldestMs = w.expiresMs
		}
	}

	delete(t.windows, oldestKey)
}
