package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product listed by a store
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"default:0"`
	Category    string         `json:"category" gorm:"type:varchar(50)"`
	ImageURL    string         `json:"image_url" gorm:"type:text"`
	StoreID     uint           `json:"store_id" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
