package model

import (
	"time"
)

// Activity action types
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Activity is an append-only audit entry for the store activity feed.
// Rows are never updated or deleted by the application.
type Activity struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StoreID      uint      `json:"store_id" gorm:"index;not null"`
	UserID       string    `json:"user_id" gorm:"type:uuid;index"`
	UserName     string    `json:"user_name" gorm:"type:varchar(100)"`
	ActionType   string    `json:"action_type" gorm:"type:varchar(20);not null"`
	ResourceType string    `json:"resource_type" gorm:"type:varchar(50);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
