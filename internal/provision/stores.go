package provision

import (
	"context"

	"github.com/kitandahub/kitanda/internal/model"
	"gorm.io/gorm"
)

// GormTenantStore persists store records through gorm
type GormTenantStore struct {
	DB *gorm.DB
}

func (s *GormTenantStore) Insert(ctx context.Context, store *model.Store) error {
	return s.DB.WithContext(ctx).Create(store).Error
}

// GormMembershipStore persists store users through gorm
type GormMembershipStore struct {
	DB *gorm.DB
}

func (s *GormMembershipStore) Insert(ctx context.Context, user *model.StoreUser) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

// GormActivityStore persists activity entries through gorm
type GormActivityStore struct {
	DB *gorm.DB
}

func (s *GormActivityStore) Insert(ctx context.Context, activity *model.Activity) error {
	return s.DB.WithContext(ctx).Create(activity).Error
}
