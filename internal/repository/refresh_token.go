// Package repository provides the data access layer for the auth service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/models"
	"gorm.io/gorm"
)

// RefreshTokenRepository defines the interface for refresh token lifecycle
// operations.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, userID int64, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	ListActive(ctx context.Context, userID int64) ([]models.RefreshToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository instance.
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create refresh token for user %d: %w", token.UserID, err)
	}
	return nil
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return &record, nil
}

// Revoke soft-deletes one still-active token owned by the user. Revoking a
// token that is already revoked or not owned by the user is a no-op.
func (r *refreshTokenRepository) Revoke(ctx context.Context, userID int64, token string) error {
	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND user_id = ? AND revoked_at IS NULL", token, userID).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token for user %d: %w", userID, err)
	}
	return nil
}

// RevokeAllForUser soft-deletes every active token the user owns.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user %d: %w", userID, err)
	}
	return nil
}

// ListActive returns the user's non-revoked, non-expired tokens, newest first.
func (r *refreshTokenRepository) ListActive(ctx context.Context, userID int64) ([]models.RefreshToken, error) {
	var records []models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens for user %d: %w", userID, err)
	}
	return records, nil
}

// DeleteExpired hard-deletes every token past its expiry, revoked or not,
// and reports how many rows were removed.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
