package cache

import (
	"context"
	"sync"
	"time"

	"marketlevy/internal/dashboard/models"
)

type entry struct {
	dashboard models.Dashboard
	expiresAt time.Time
}

// InMemoryCache is used when Redis is not configured.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewInMemory() *InMemoryCache {
	return &InMemoryCache{items: make(map[string]entry), now: time.Now}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (*models.Dashboard, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, nil
	}
	d := e.dashboard
	return &d, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, d *models.Dashboard, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{dashboard: *d, expiresAt: c.now().Add(ttl)}
	return nil
}
