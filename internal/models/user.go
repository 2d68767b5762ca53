// Package models contains data models for the auth service.
package models

import "time"

// User represents an account in the system. Password holds the bcrypt hash
// and is never serialized.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Profile   *string   `json:"profile,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Role      string    `json:"role" gorm:"not null;default:user"`
	Groups    []Group   `json:"groups,omitempty" gorm:"many2many:user_groups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Permissions flattens and dedupes the permission names of all groups the
// user belongs to. Groups must have been preloaded.
func (u *User) Permissions() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, group := range u.Groups {
		for _, permission := range group.Permissions {
			if _, ok := seen[permission.Name]; ok {
				continue
			}
			seen[permission.Name] = struct{}{}
			names = append(names, permission.Name)
		}
	}
	return names
}
