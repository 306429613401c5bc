package model

import (
	"time"
)

// Identity represents an account in the identity service.
// No soft delete: the compensating delete must free the unique email
// index so a rolled-back registration can retry with the same address.
type Identity struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	Email             string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password          string     `json:"-" gorm:"type:varchar(255);not null"`
	Role              string     `json:"role" gorm:"type:varchar(50);not null;default:'store_owner'"`
	ConfirmationToken string     `json:"-" gorm:"type:uuid;index"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
