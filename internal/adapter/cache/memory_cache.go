package cache

import (
	"sync"

	"github.com/example/commerce-service/internal/domain"
)

type cacheKey struct {
	kind domain.OrderKind
	id   string
}

type MemoryOrderCache struct {
	mu    sync.RWMutex
	store map[cacheKey]domain.Order
}

func NewMemoryOrderCache() *MemoryOrderCache {
	return &MemoryOrderCache{store: make(map[cacheKey]domain.Order)}
}

func (c *MemoryOrderCache) Get(kind domain.OrderKind, id string) (domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.store[cacheKey{kind: kind, id: id}]
	return o, ok
}

func (c *MemoryOrderCache) Set(o domain.Order) {
	c.mu.Lock()
	c.store[cacheKey{kind: o.Kind, id: o.OrderID}] = o
	c.mu.Unlock()
}

func (c *MemoryOrderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

var _ domain.OrderCache = (*MemoryOrderCache)(nil)
