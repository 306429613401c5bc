package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitandahub/kitanda/internal/identity"
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/internal/provision"
	"github.com/kitandahub/kitanda/pkg/jwtutil"
)

type stubIdentities struct {
	createErr error
	deleteErr error
	deleted   []string
}

func (s *stubIdentities) CreateIdentity(_ context.Context, req identity.CreateRequest) (*model.Identity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.Identity{ID: "11111111-2222-3333-4444-555555555555", Email: req.Email, Role: req.Role}, nil
}

func (s *stubIdentities) DeleteIdentity(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTenants struct{ err error }

func (s *stubTenants) Insert(_ context.Context, store *model.Store) error {
	if s.err != nil {
		return s.err
	}
	store.ID = 1
	return nil
}

type stubMembers struct{ err error }

func (s *stubMembers) Insert(_ context.Context, user *model.StoreUser) error {
	return s.err
}

type stubActivities struct{ err error }

func (s *stubActivities) Insert(_ context.Context, activity *model.Activity) error {
	return s.err
}

func registrationBody() string {
	return `{
		"name": "Kitanda da Esquina",
		"email": "dona@example.com",
		"password": "s3nha-forte",
		"province": "Luanda",
		"store_type": "grocery",
		"phone": "+244923000000",
		"description": "Mercearia de bairro",
		"latitude": -8.83,
		"longitude": 13.23
	}`
}

func registerRequest(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/register-store", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.RegisterStore(c))
	return rec
}

func newRegisterHandler(identities *stubIdentities, tenants *stubTenants, members *stubMembers, activities *stubActivities) *AuthHandler {
	saga := provision.NewSaga(identities, tenants, members, activities)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 1})
	return NewAuthHandler(nil, saga, jwt, "http://localhost:3000")
}

func TestRegisterStoreCreated(t *testing.T) {
	h := newRegisterHandler(&stubIdentities{}, &stubTenants{}, &stubMembers{}, &stubActivities{})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "store")
	assert.Contains(t, body, "user")
}

func TestRegisterStoreRejectsBadGeolocation(t *testing.T) {
	h := newRegisterHandler(&stubIdentities{}, &stubTenants{}, &stubMembers{}, &stubActivities{})

	body := strings.Replace(registrationBody(), "-8.83", "120.5", 1)
	rec := registerRequest(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterStoreConflict(t *testing.T) {
	h := newRegisterHandler(&stubIdentities{createErr: identity.ErrEmailTaken}, &stubTenants{}, &stubMembers{}, &stubActivities{})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestRegisterStoreIdentityServiceDown(t *testing.T) {
	h := newRegisterHandler(&stubIdentities{createErr: errors.New("connection refused")}, &stubTenants{}, &stubMembers{}, &stubActivities{})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRegisterStoreRolledBack(t *testing.T) {
	identities := &stubIdentities{}
	h := newRegisterHandler(identities, &stubTenants{err: errors.New("constraint violation")}, &stubMembers{}, &stubActivities{})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "registration failed")

	// The identity created in step one was compensated away
	assert.Len(t, identities.deleted, 1)
}

func TestRegisterStoreCompensationFailed(t *testing.T) {
	identities := &stubIdentities{deleteErr: errors.New("identity service down")}
	h := newRegisterHandler(identities, &stubTenants{err: errors.New("constraint violation")}, &stubMembers{}, &stubActivities{})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "contact support")
}

func TestRedirectAllowed(t *testing.T) {
	origin := "https://app.kitanda.local"

	assert.True(t, redirectAllowed(origin, "https://app.kitanda.local/login"))
	assert.True(t, redirectAllowed(origin, "https://app.kitanda.local/login?confirmed=true"))

	assert.False(t, redirectAllowed(origin, "https://evil.example.com/login"))
	assert.False(t, redirectAllowed(origin, "http://app.kitanda.local/login"))
	assert.False(t, redirectAllowed(origin, "//evil.example.com/login"))
	assert.False(t, redirectAllowed(origin, "javascript:alert(1)"))
	assert.False(t, redirectAllowed("", "https://app.kitanda.local/login"))
}

func TestRegisterStoreActivityFailureStillCreated(t *testing.T) {
	h := newRegisterHandler(&stubIdentities{}, &stubTenants{}, &stubMembers{}, &stubActivities{err: errors.New("activity table unavailable")})

	rec := registerRequest(t, h, registrationBody())
	assert.Equal(t, http.StatusCreated, rec.Code)
}
