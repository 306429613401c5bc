package pagination

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DefaultLimit is used when the caller does not specify a page size
const DefaultLimit = 10

// Params selects a 1-indexed page of a collection
type Params struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// Normalize clamps the params to their minimums and applies defaults
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset returns the row offset for the selected page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Metadata describes the full collection the page was cut from
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewMetadata computes page math for a collection of the given size:
// totalPages = ceil(total/limit), hasMore = page < totalPages.
func NewMetadata(total int64, p Params) Metadata {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Metadata{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasMore:    p.Page < totalPages,
	}
}

// Response is a page of items plus collection metadata
type Response[T any] struct {
	Data     []T      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// Query fetches one page of the collection selected by tx, newest first.
// The count and the page fetch run as two independent reads; a concurrent
// insert between them may skew hasMore by one page boundary, which is
// accepted. tx must already be scoped to a model and the caller's store.
func Query[T any](ctx context.Context, tx *gorm.DB, p Params) (*Response[T], error) {
	p = p.Normalize()

	var total int64
	if err := tx.WithContext(ctx).Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	var items []T
	err := tx.WithContext(ctx).Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}

	if items == nil {
		items = []T{}
	}

	return &Response[T]{
		Data:     items,
		Metadata: NewMetadata(total, p),
	}, nil
}
