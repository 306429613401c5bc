package model

import (
	"time"

	"gorm.io/gorm"
)

// Store represents a registered store (the tenant of the platform)
type Store struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Province    string         `json:"province" gorm:"type:varchar(100)"`
	StoreType   string         `json:"store_type" gorm:"type:varchar(50)"`
	Phone       string         `json:"phone" gorm:"type:varchar(30)"`
	Description string         `json:"description" gorm:"type:text"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	OwnerID     string         `json:"user_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
