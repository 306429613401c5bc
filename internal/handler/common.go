package handler

import (
	"errors"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Errors returned by the caller-context helpers
var (
	errNotAuthenticated = errors.New("authentication required")
	errStoreNotFound    = errors.New("store not found")
)

// currentClaims returns the JWT claims set by the auth middleware
func currentClaims(c echo.Context) (*jwtutil.UserClaims, error) {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return nil, errNotAuthenticated
	}
	return claims, nil
}

// resolveStoreByOwner looks up the store owned by an identity. Declared as a
// variable so tests can swap in a resolver without a database.
var resolveStoreByOwner = func(ownerID string) (*model.Store, error) {
	var store model.Store
	result := database.GetDB().Where("owner_id = ?", ownerID).First(&store)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errStoreNotFound
		}
		return nil, result.Error
	}
	return &store, nil
}

// currentStore resolves the caller's store from its identity. List views are
// always scoped to this store.
func currentStore(c echo.Context) (*model.Store, error) {
	claims, err := currentClaims(c)
	if err != nil {
		return nil, err
	}
	return resolveStoreByOwner(claims.IdentityID)
}
