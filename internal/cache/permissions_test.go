package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/models"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	permissions map[int64][]string
	err         error
	queries     atomic.Int64
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User, groupIDs []int64) error {
	return errors.New("not implemented")
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetUserPermissions(ctx context.Context, userID int64) ([]string, error) {
	m.queries.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.permissions[userID], nil
}

func setupTestCache(t *testing.T, ttl time.Duration) (*PermissionCache, *mockUserRepository) {
	t.Helper()
	mockRepo := &mockUserRepository{
		permissions: map[int64][]string{
			1: {"article.read", "article.create"},
			2: {"article.read"},
		},
	}
	// No janitor; tests drive expiry through the injected clock.
	c := NewPermissionCache(mockRepo, ttl, 0, nil)
	t.Cleanup(c.Close)
	return c, mockRepo
}

// =============================================================================
// Resolve Tests
// =============================================================================

func TestResolve_Miss(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)

	set, err := c.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(set) != 2 || !set.Contains("article.read") || !set.Contains("article.create") {
		t.Errorf("Resolve() = %v", set)
	}
	if got := mockRepo.queries.Load(); got != 1 {
		t.Errorf("store queries = %d, want 1", got)
	}
}

func TestResolve_HitWithinTTL(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)

	first, err := c.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := c.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got := mockRepo.queries.Load(); got != 1 {
		t.Errorf("second Resolve() within TTL should not query the store, queries = %d", got)
	}

	if len(first) != len(second) {
		t.Error("cached permission set should be identical")
	}
	for name := range first {
		if !second.Contains(name) {
			t.Errorf("cached set missing %q", name)
		}
	}
}

func TestResolve_ExpiryTriggersRefetch(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)

	now := time.Now()
	c.nowFunc = func() time.Time { return now }

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Advance past the TTL; the next read must hit the store again.
	now = now.Add(5*time.Minute + time.Second)

	mockRepo.permissions[1] = []string{"article.read", "article.delete"}
	set, err := c.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got := mockRepo.queries.Load(); got != 2 {
		t.Errorf("store queries = %d, want 2", got)
	}
	if !set.Contains("article.delete") {
		t.Error("refetched set should reflect the updated permissions")
	}
}

func TestResolve_StoreError(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)
	mockRepo.err = errors.New("database down")

	if _, err := c.Resolve(context.Background(), 1); err == nil {
		t.Error("Resolve() should propagate store errors")
	}
}

func TestResolve_DedupesAcrossGroups(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)
	// The repository already dedupes, but the set collapses repeats anyway.
	mockRepo.permissions[3] = []string{"article.read", "article.read", "page.update"}

	set, err := c.Resolve(context.Background(), 3)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(set) != 2 {
		t.Errorf("Resolve() set size = %d, want 2", len(set))
	}
}

// =============================================================================
// Invalidate Tests
// =============================================================================

func TestInvalidate_SingleUser(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := c.Resolve(context.Background(), 2); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	c.Invalidate(1)

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := c.Resolve(context.Background(), 2); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// User 1 refetched, user 2 still cached: 2 initial + 1 after invalidate.
	if got := mockRepo.queries.Load(); got != 3 {
		t.Errorf("store queries = %d, want 3", got)
	}
}

func TestInvalidateAll(t *testing.T) {
	c, mockRepo := setupTestCache(t, 5*time.Minute)

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := c.Resolve(context.Background(), 2); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("Len() after InvalidateAll = %d, want 0", c.Len())
	}

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := mockRepo.queries.Load(); got != 3 {
		t.Errorf("store queries = %d, want 3", got)
	}
}

// =============================================================================
// Janitor Tests
// =============================================================================

func TestJanitor_EvictsExpiredEntries(t *testing.T) {
	mockRepo := &mockUserRepository{permissions: map[int64][]string{1: {"article.read"}}}
	c := NewPermissionCache(mockRepo, 10*time.Millisecond, 20*time.Millisecond, nil)
	defer c.Close()

	if _, err := c.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("janitor did not evict the expired entry in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestResolve_Concurrent(t *testing.T) {
	c, _ := setupTestCache(t, 5*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := c.Resolve(context.Background(), userID); err != nil {
				t.Errorf("Resolve() error = %v", err)
			}
		}(int64(i%2 + 1))
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c.Invalidate(userID)
		}(int64(i%2 + 1))
	}
	wg.Wait()
}

// =============================================================================
// PermissionSet Tests
// =============================================================================

func TestPermissionSet_ContainsAny(t *testing.T) {
	set := PermissionSet{
		"article.read": {},
	}

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{"single match", []string{"article.read"}, true},
		{"no match", []string{"article.delete"}, false},
		{"partial overlap", []string{"article.read", "article.create"}, true},
		{"empty query", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.ContainsAny(tt.names); got != tt.want {
				t.Errorf("ContainsAny(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}
