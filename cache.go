package watermark

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DeriveFunc produces the alpha map for an overlay size.
type DeriveFunc func(size int) (*AlphaMap, error)

// AlphaMapCache memoizes alpha maps per overlay size. Concurrent first
// requests for a size share a single derivation; failed derivations are not
// stored, so a later call retries.
type AlphaMapCache struct {
	derive DeriveFunc

	mu    sync.RWMutex
	maps  map[int]*AlphaMap
	group singleflight.Group
}

// NewAlphaMapCache returns an empty cache backed by derive.
func NewAlphaMapCache(derive DeriveFunc) *AlphaMapCache {
	return &AlphaMapCache{
		derive: derive,
		maps:   make(map[int]*AlphaMap),
	}
}

// GetOrCompute returns the alpha map for size, deriving it on first use.
func (c *AlphaMapCache) GetOrCompute(size int) (*AlphaMap, error) {
	m, _, err := c.get(size)
	return m, err
}

// Len reports how many sizes have been derived.
func (c *AlphaMapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps)
}

// get returns the map for size and whether it was already cached.
func (c *AlphaMapCache) get(size int) (*AlphaMap, bool, error) {
	if m, ok := c.lookup(size); ok {
		return m, true, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(size), func() (any, error) {
		// A caller that lost the race to an earlier flight lands here after
		// the map was stored.
		if m, ok := c.lookup(size); ok {
			return m, nil
		}

		m, err := c.derive(size)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: no alpha map derived for size %d", ErrShapeMismatch, size)
		}
		if m.Size() != size {
			return nil, fmt.Errorf("%w: derived map is %dx%d, want %dx%d",
				ErrShapeMismatch, m.Size(), m.Size(), size, size)
		}

		c.mu.Lock()
		c.maps[size] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*AlphaMap), false, nil
}

func (c *AlphaMapCache) lookup(size int) (*AlphaMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.maps[size]
	return m, ok
}
