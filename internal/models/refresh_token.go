// Package models contains data models for the auth service.
package models

import "time"

// RefreshToken is one issued refresh credential. Revocation is a soft
// delete via RevokedAt so a revoked token stays distinguishable from one
// that never existed; expired rows are removed by the periodic sweep.
type RefreshToken struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Token     string     `json:"-" gorm:"uniqueIndex;not null"`
	UserID    int64      `json:"user_id" gorm:"index;not null"`
	User      User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	IssuedAt  time.Time  `json:"issued_at" gorm:"not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UserAgent *string    `json:"user_agent,omitempty"`
	IPAddress *string    `json:"ip_address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName returns the database table name for the RefreshToken model.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Revoked reports whether the token has been explicitly revoked.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token's expiry has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
