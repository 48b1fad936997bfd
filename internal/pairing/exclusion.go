package pairing

import (
	"context"
	"sync"
)

// ExclusionCache is the bounded set of recently shown profile ids. It is a
// best-effort anti-repetition mechanism, not a correctness-critical lock:
// entries are evicted least-recent-first once the capacity is reached.
type ExclusionCache interface {
	// Add marks ids as recently shown. Re-adding an id refreshes it.
	Add(ctx context.Context, ids ...string) error
	// Recent returns the cached ids, most recent first.
	Recent(ctx context.Context) ([]string, error)
	// Clear empties the cache. Exposed for admin and test use.
	Clear(ctx context.Context) error
	// Len returns the number of cached ids.
	Len(ctx context.Context) (int, error)
}

// DefaultExclusionSize matches the recently-voted window of the directory UI.
const DefaultExclusionSize = 20

// memoryExclusionCache is the per-instance implementation: an ordered set
// with FIFO eviction under a single mutex.
type memoryExclusionCache struct {
	mu       sync.Mutex
	capacity int
	order    []string // most recent first
	members  map[string]struct{}
}

// NewMemoryExclusionCache creates an in-process exclusion cache bounded to
// the given capacity. A capacity of zero or less falls back to the default.
func NewMemoryExclusionCache(capacity int) ExclusionCache {
	if capacity <= 0 {
		capacity = DefaultExclusionSize
	}
	return &memoryExclusionCache{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
	}
}

func (c *memoryExclusionCache) Add(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := c.members[id]; ok {
			c.remove(id)
		}
		c.order = append([]string{id}, c.order...)
		c.members[id] = struct{}{}

		if len(c.order) > c.capacity {
			oldest := c.order[len(c.order)-1]
			c.order = c.order[:len(c.order)-1]
			delete(c.members, oldest)
		}
	}
	return nil
}

func (c *memoryExclusionCache) remove(id string) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	delete(c.members, id)
}

func (c *memoryExclusionCache) Recent(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.order))
	copy(out, c.order)
	return out, nil
}

func (c *memoryExclusionCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = nil
	c.members = make(map[string]struct{}, c.capacity)
	return nil
}

func (c *memoryExclusionCache) Len(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order), nil
}
