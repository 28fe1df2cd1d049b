package cache

import (
	"context"
	"sync"
	"time"
)

// PermissionCache stores the permission-name set of a role.
// A found entry with an empty slice means the role has no grants.
type PermissionCache interface {
	Get(ctx context.Context, role string) (perms []string, found bool, err error)
	Set(ctx context.Context, role string, perms []string) error
	Delete(ctx context.Context, role string) error
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	perms     []string
	expiresAt time.Time
}

// MemoryPermissionCache is a process-local TTL cache.
type MemoryPermissionCache struct {
	entries sync.Map // role -> memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryPermissionCache(ttl time.Duration) *MemoryPermissionCache {
	return &MemoryPermissionCache{ttl: ttl, now: time.Now}
}

func (c *MemoryPermissionCache) Get(_ context.Context, role string) ([]string, bool, error) {
	v, ok := c.entries.Load(role)
	if !ok {
		return nil, false, nil
	}
	entry := v.(memoryEntry)
	if !c.now().Before(entry.expiresAt) {
		c.entries.Delete(role)
		return nil, false, nil
	}
	return append([]string(nil), entry.perms...), true, nil
}

func (c *MemoryPermissionCache) Set(_ context.Context, role string, perms []string) error {
	c.entries.Store(role, memoryEntry{
		perms:     append(make([]string, 0, len(perms)), perms...),
		expiresAt: c.now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryPermissionCache) Delete(_ context.Context, role string) error {
	c.entries.Delete(role)
	return nil
}

func (c *MemoryPermissionCache) Clear(_ context.Context) error {
	c.entries.Range(func(key, _ interface{}) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}
