package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/cache"
	"github.com/FachruDev/backend-codecraft/internal/models"
	"github.com/gin-gonic/gin"
)

type stubUserRepository struct{}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepository) Create(ctx context.Context, user *models.User, groupIDs []int64) error {
	return nil
}

func (s *stubUserRepository) Update(ctx context.Context, user *models.User) error {
	return nil
}

func (s *stubUserRepository) GetUserPermissions(ctx context.Context, userID int64) ([]string, error) {
	return []string{"article.read"}, nil
}

func setupCacheRouter(t *testing.T) (*gin.Engine, *cache.PermissionCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	permissions := cache.NewPermissionCache(&stubUserRepository{}, time.Minute, 0, nil)
	t.Cleanup(permissions.Close)

	router := gin.New()
	router.POST("/invalidate", NewCacheHandler(permissions).Invalidate)
	return router, permissions
}

func TestCacheHandler_InvalidateSingleUser(t *testing.T) {
	router, permissions := setupCacheRouter(t)

	ctx := context.Background()
	if _, err := permissions.Resolve(ctx, 1); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := permissions.Resolve(ctx, 2); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	w := doJSON(router, http.MethodPost, "/invalidate", gin.H{"user_id": 1})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if permissions.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", permissions.Len())
	}
}

func TestCacheHandler_InvalidateAll(t *testing.T) {
	router, permissions := setupCacheRouter(t)

	ctx := context.Background()
	for userID := int64(1); userID <= 3; userID++ {
		if _, err := permissions.Resolve(ctx, userID); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}

	w := doJSON(router, http.MethodPost, "/invalidate", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if permissions.Len() != 0 {
		t.Errorf("cache entries = %d, want 0", permissions.Len())
	}
}
