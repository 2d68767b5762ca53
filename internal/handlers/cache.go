package handlers

import (
	"net/http"

	"github.com/FachruDev/backend-codecraft/internal/cache"
	"github.com/gin-gonic/gin"
)

// CacheHandler exposes permission cache maintenance operations.
type CacheHandler struct {
	permissions *cache.PermissionCache
}

// NewCacheHandler creates a new CacheHandler instance.
func NewCacheHandler(permissions *cache.PermissionCache) *CacheHandler {
	return &CacheHandler{permissions: permissions}
}

// InvalidateRequest optionally narrows invalidation to a single user.
type InvalidateRequest struct {
	UserID int64 `json:"user_id"`
}

// Invalidate godoc
// @Summary Invalidate cached permissions
// @Description Drop cached permission sets so group or permission changes take effect immediately. Without a user_id the whole cache is cleared.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /auth/permissions/invalidate [post]
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req InvalidateRequest
	_ = c.ShouldBindJSON(&req)

	if req.UserID > 0 {
		h.permissions.Invalidate(req.UserID)
		RespondSuccess(c, http.StatusOK, "Permission cache invalidated for user", nil)
		return
	}

	h.permissions.InvalidateAll()
	RespondSuccess(c, http.StatusOK, "Permission cache invalidated", nil)
}
