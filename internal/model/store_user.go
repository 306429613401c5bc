package model

import (
	"time"

	"gorm.io/gorm"
)

// Store user roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// StoreUser represents a dashboard user belonging to a store.
// Every store has at least one admin user from the moment it is provisioned.
type StoreUser struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100);not null"`
	Role      string         `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	StoreID   uint           `json:"store_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Store Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}
