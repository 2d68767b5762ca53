// Package models contains data models for the auth service.
package models

import "time"

// Group is a named collection of permissions users can be assigned to.
type Group struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:group_permissions"`
	Users       []User       `json:"-" gorm:"many2many:user_groups"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName returns the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}

// Permission is an atomic capability in resource.action form
// (article.create, user.delete, ...).
type Permission struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Groups    []Group   `json:"-" gorm:"many2many:group_permissions"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
