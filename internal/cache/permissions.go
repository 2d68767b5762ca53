// Package cache provides the process-local permission cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/metrics"
	"github.com/FachruDev/backend-codecraft/internal/repository"
)

// PermissionSet is a resolved set of permission names.
type PermissionSet map[string]struct{}

// Contains reports whether the set holds the named permission.
func (s PermissionSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// ContainsAny reports whether the set intersects the given names.
func (s PermissionSet) ContainsAny(names []string) bool {
	for _, name := range names {
		if s.Contains(name) {
			return true
		}
	}
	return false
}

type entry struct {
	permissions PermissionSet
	expiresAt   time.Time
}

// PermissionCache maps user ids to resolved permission sets with a fixed
// TTL, populated lazily from the user repository. It is process-local:
// in a multi-instance deployment each instance caches independently and
// explicit invalidation only reaches the instance that receives it; other
// instances converge via TTL expiry.
type PermissionCache struct {
	userRepo repository.UserRepository
	ttl      time.Duration
	metrics  *metrics.Metrics
	nowFunc  func() time.Time

	mu      sync.RWMutex
	entries map[int64]entry

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// NewPermissionCache creates a PermissionCache with the given TTL. When
// sweep is positive, a janitor goroutine evicts expired entries on that
// interval until Close is called; expiry is also checked on every read.
func NewPermissionCache(userRepo repository.UserRepository, ttl, sweep time.Duration, m *metrics.Metrics) *PermissionCache {
	c := &PermissionCache{
		userRepo:    userRepo,
		ttl:         ttl,
		metrics:     m,
		nowFunc:     time.Now,
		entries:     make(map[int64]entry),
		janitorStop: make(chan struct{}),
	}
	if sweep > 0 {
		go c.janitor(sweep)
	}
	return c
}

// Resolve returns the user's permission set, serving from cache within the
// TTL window and querying the user repository on a miss.
func (c *PermissionCache) Resolve(ctx context.Context, userID int64) (PermissionSet, error) {
	now := c.nowFunc()

	c.mu.RLock()
	cached, ok := c.entries[userID]
	c.mu.RUnlock()
	if ok && cached.expiresAt.After(now) {
		if c.metrics != nil {
			c.metrics.PermissionCacheHits.Inc()
		}
		return cached.permissions, nil
	}

	if c.metrics != nil {
		c.metrics.PermissionCacheMiss.Inc()
	}

	names, err := c.userRepo.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	permissions := make(PermissionSet, len(names))
	for _, name := range names {
		permissions[name] = struct{}{}
	}

	c.mu.Lock()
	c.entries[userID] = entry{permissions: permissions, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return permissions, nil
}

// Invalidate evicts one user's cached permissions. Mutation paths (group
// membership or group permission changes) call this so the change is
// visible before the TTL would expire it.
func (c *PermissionCache) Invalidate(userID int64) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// InvalidateAll flushes the entire cache.
func (c *PermissionCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[int64]entry)
	c.mu.Unlock()
}

// Len returns the number of cached entries, expired or not.
func (c *PermissionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the janitor goroutine. Safe to call more than once.
func (c *PermissionCache) Close() {
	c.janitorOnce.Do(func() {
		close(c.janitorStop)
	})
}

func (c *PermissionCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.janitorStop:
			return
		}
	}
}

func (c *PermissionCache) evictExpired() {
	now := c.nowFunc()
	c.mu.Lock()
	for userID, cached := range c.entries {
		if !cached.expiresAt.After(now) {
			delete(c.entries, userID)
		}
	}
	c.mu.Unlock()
}
