// Package handlers contains HTTP request handlers for the auth service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/FachruDev/backend-codecraft/internal/metrics"
	"github.com/FachruDev/backend-codecraft/internal/middleware"
	"github.com/FachruDev/backend-codecraft/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Profile  *string `json:"profile"`
	Bio      *string `json:"bio"`
	Role     string  `json:"role"`
	GroupIDs []int64 `json:"group_ids"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents the optional logout request payload.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register godoc
// @Summary Register a new user
// @Description Create a user account and return the profile with token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile,
		Bio:      req.Bio,
		Role:     req.Role,
		GroupIDs: req.GroupIDs,
	}, deviceContext(c))
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			RespondError(c, http.StatusBadRequest, "Email is already registered", "DUPLICATE_EMAIL")
			return
		}
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	RespondSuccess(c, http.StatusCreated, "User registered successfully", response)
}

// Login godoc
// @Summary User login
// @Description Authenticate by email and password, return profile with token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, deviceContext(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.countLogin("failure")
			RespondError(c, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
			return
		}
		h.countLogin("error")
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	h.countLogin("success")
	RespondSuccess(c, http.StatusOK, "Login successful", response)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange a valid refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, err)
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status, message, code := refreshFailure(err)
		if code == "INTERNAL_SERVER_ERROR" {
			h.countRefresh("error")
			LogAndRespondError(c, status, err, message, code)
			return
		}
		h.countRefresh("failure")
		RespondError(c, status, message, code)
		return
	}

	h.countRefresh("success")
	RespondSuccess(c, http.StatusOK, "Token refreshed successfully", response)
}

// Logout godoc
// @Summary User logout
// @Description Revoke the supplied refresh token, or all of the caller's tokens when none is supplied
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "Access denied", "UNAUTHORIZED")
		return
	}

	// Body is optional; an empty or absent refresh_token revokes everything.
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), claims.UserID, req.RefreshToken); err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	RespondSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// LogoutAll godoc
// @Summary Logout from all devices
// @Description Revoke every active refresh token owned by the caller
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "Access denied", "UNAUTHORIZED")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), claims.UserID); err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	RespondSuccess(c, http.StatusOK, "Logged out from all devices", nil)
}

// Sessions godoc
// @Summary List active sessions
// @Description List the caller's active refresh tokens without exposing token strings
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/tokens [get]
func (h *AuthHandler) Sessions(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "Access denied", "UNAUTHORIZED")
		return
	}

	// The caller may identify its own session by supplying its refresh
	// token; the token string itself is still never echoed back.
	currentToken := c.GetHeader("X-Refresh-Token")

	sessions, err := h.authService.ListSessions(c.Request.Context(), claims.UserID, currentToken)
	if err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	RespondSuccess(c, http.StatusOK, "Sessions retrieved successfully", sessions)
}

// Me godoc
// @Summary Get current user profile
// @Description Return the caller's profile with groups and permissions
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "Access denied", "UNAUTHORIZED")
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			RespondError(c, http.StatusNotFound, "User not found", "NOT_FOUND")
			return
		}
		LogAndRespondError(c, http.StatusInternalServerError, err, "An internal server error occurred", "INTERNAL_SERVER_ERROR")
		return
	}

	RespondSuccess(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// Verify godoc
// @Summary Verify access token
// @Description Echo the claims of the verified bearer token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "Access denied", "UNAUTHORIZED")
		return
	}

	RespondSuccess(c, http.StatusOK, "Token is valid", gin.H{
		"user_id":    claims.UserID,
		"email":      claims.Email,
		"role":       claims.Role,
		"issued_at":  claims.IssuedAt,
		"expires_at": claims.ExpiresAt,
	})
}

func refreshFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		return http.StatusUnauthorized, "Refresh token not found", "TOKEN_NOT_FOUND"
	case errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "Refresh token has been revoked", "TOKEN_REVOKED"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "Refresh token has expired", "TOKEN_EXPIRED"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Refresh token is invalid", "INVALID_TOKEN"
	default:
		return http.StatusInternalServerError, "An internal server error occurred", "INTERNAL_SERVER_ERROR"
	}
}

func (h *AuthHandler) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (h *AuthHandler) countRefresh(outcome string) {
	if h.metrics != nil {
		h.metrics.TokenRefreshes.WithLabelValues(outcome).Inc()
	}
}

func deviceContext(c *gin.Context) service.DeviceContext {
	return service.DeviceContext{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
