package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/jwtutil"
)

func listContext(t *testing.T, path string, claims *jwtutil.UserClaims) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set("user", claims)
	}
	return c, rec
}

// swapStoreResolver replaces the store lookup for the duration of a test
func swapStoreResolver(t *testing.T, resolver func(ownerID string) (*model.Store, error)) {
	t.Helper()
	orig := resolveStoreByOwner
	resolveStoreByOwner = resolver
	t.Cleanup(func() { resolveStoreByOwner = orig })
}

func TestListProductsRequiresAuthentication(t *testing.T) {
	h := NewProductHandler(nil)

	c, rec := listContext(t, "/api/products", nil)
	require.NoError(t, h.ListProducts(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestListActivitiesRequiresAuthentication(t *testing.T) {
	c, rec := listContext(t, "/api/activities", nil)
	require.NoError(t, ListActivities(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProductsWithoutOwnedStoreIsNotFound(t *testing.T) {
	swapStoreResolver(t, func(ownerID string) (*model.Store, error) {
		return nil, errStoreNotFound
	})

	h := NewProductHandler(nil)
	c, rec := listContext(t, "/api/products", &jwtutil.UserClaims{
		Email:      "dona@example.com",
		IdentityID: "11111111-2222-3333-4444-555555555555",
	})
	require.NoError(t, h.ListProducts(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "store not found")
}

func TestListActivitiesWithoutOwnedStoreIsNotFound(t *testing.T) {
	swapStoreResolver(t, func(ownerID string) (*model.Store, error) {
		return nil, errStoreNotFound
	})

	c, rec := listContext(t, "/api/activities", &jwtutil.UserClaims{
		Email:      "dona@example.com",
		IdentityID: "11111111-2222-3333-4444-555555555555",
	})
	require.NoError(t, ListActivities(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreResolutionErrorMapsUnknownErrors(t *testing.T) {
	swapStoreResolver(t, func(ownerID string) (*model.Store, error) {
		return nil, assert.AnError
	})

	c, rec := listContext(t, "/api/activities", &jwtutil.UserClaims{IdentityID: "abc"})
	require.NoError(t, ListActivities(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
