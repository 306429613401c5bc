package model

import (
	"time"
)

// Plan represents a subscription plan offered to store owners
type Plan struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Price        float64   `json:"price" gorm:"not null"`
	ProductLimit int       `json:"product_limit" gorm:"not null"`
	UserLimit    int       `json:"user_limit" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
