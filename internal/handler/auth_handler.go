package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/kitandahub/kitanda/internal/identity"
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/internal/provision"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/jwtutil"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/kitandahub/kitanda/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves registration, login and email confirmation
type AuthHandler struct {
	identities     *identity.Service
	saga           *provision.Saga
	jwt            *jwtutil.JWTUtil
	redirectOrigin string
}

// NewAuthHandler wires the auth endpoints with their collaborators
func NewAuthHandler(identities *identity.Service, saga *provision.Saga, jwt *jwtutil.JWTUtil, redirectOrigin string) *AuthHandler {
	return &AuthHandler{
		identities:     identities,
		saga:           saga,
		jwt:            jwt,
		redirectOrigin: redirectOrigin,
	}
}

// RegisterStore provisions a new store end-to-end via the saga
func (h *AuthHandler) RegisterStore(c echo.Context) error {
	log := logger.FromEcho(c)

	var req provision.Input
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse store registration request", zap.Error(err))
		metrics.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := req.Validate(); err != nil {
		log.Warn("Invalid store registration data", zap.Error(err))
		metrics.RecordAuthError("invalid_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// The confirmation link points back at the caller's origin
	req.RedirectOrigin = c.Request().Header.Get("Origin")
	if req.RedirectOrigin == "" {
		req.RedirectOrigin = h.redirectOrigin
	}

	ctx := logger.WithContext(c.Request().Context(), log)
	res, err := h.saga.Run(ctx, req)
	if err != nil {
		return h.registrationError(c, res, err)
	}

	log.Info("Store registered",
		zap.Uint("store_id", res.Store.ID),
		zap.String("email", req.Email))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Store registered successfully, confirmation email sent",
		"user": map[string]interface{}{
			"id":    res.Identity.ID,
			"email": res.Identity.Email,
		},
		"store": res.Store,
	})
}

// registrationError maps the saga error taxonomy onto HTTP responses
func (h *AuthHandler) registrationError(c echo.Context, res *provision.Result, err error) error {
	log := logger.FromEcho(c)

	var compErr *provision.CompensationError
	switch {
	case errors.Is(err, provision.ErrIdentityConflict):
		metrics.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, provision.ErrIdentityUnavailable):
		log.Error("Identity service unavailable during registration", zap.Error(err))
		metrics.RecordAuthError("identity_service_unavailable")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "registration temporarily unavailable"})
	case errors.As(err, &compErr):
		// Inconsistent state: an identity may be left behind. The client
		// must not retry until an operator has cleaned up.
		log.Error("Registration compensation failed",
			zap.String("state", string(res.State)),
			zap.Error(err))
		metrics.RecordAuthError("compensation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed, contact support"})
	default:
		log.Error("Registration failed and was rolled back",
			zap.String("state", string(res.State)),
			zap.Error(err))
		metrics.RecordAuthError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
}

// Login authenticates a store owner and issues a store-scoped token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	metrics.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		metrics.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := logger.WithContext(c.Request().Context(), log)
	ident, err := h.identities.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Warn("Login failed", zap.String("email", req.Email))
			metrics.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Identity lookup failed", zap.Error(err))
		metrics.RecordAuthError("identity_service_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	if ident.ConfirmedAt == nil {
		log.Warn("Login attempt on unconfirmed account", zap.String("email", req.Email))
		metrics.RecordAuthError("email_not_confirmed")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "email not confirmed"})
	}

	// Resolve the owned store and the caller's role in it, when present
	var storeID *uint
	var storeName, role string
	var store model.Store
	if result := database.GetDB().Where("owner_id = ?", ident.ID).First(&store); result.Error == nil {
		storeID = &store.ID
		storeName = store.Name

		var member model.StoreUser
		if result := database.GetDB().Select("role").
			Where("store_id = ? AND email = ?", store.ID, ident.Email).
			First(&member); result.Error == nil {
			role = member.Role
		}
	}

	token, err := h.jwt.GenerateTokenWithStore(ident.Email, ident.ID, storeID, storeName, role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		metrics.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", ident.Email),
		zap.String("identity_id", ident.ID))

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    ident.ID,
			"email": ident.Email,
			"role":  ident.Role,
		},
	}
	if storeID != nil {
		response["store"] = map[string]interface{}{
			"id":   *storeID,
			"name": storeName,
			"role": role,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// Confirm redeems the emailed confirmation token
func (h *AuthHandler) Confirm(c echo.Context) error {
	log := logger.FromEcho(c)

	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx := logger.WithContext(c.Request().Context(), log)
	ident, err := h.identities.Confirm(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrTokenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired confirmation token"})
		}
		log.Error("Failed to confirm identity", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
	}

	log.Info("Email confirmed", zap.String("email", ident.Email))

	// Only redirect within the configured origin, never to an
	// attacker-supplied target
	if redirect := c.QueryParam("redirect_to"); redirect != "" {
		if redirectAllowed(h.redirectOrigin, redirect) {
			return c.Redirect(http.StatusFound, redirect)
		}
		log.Warn("Ignoring confirmation redirect outside the configured origin",
			zap.String("redirect_to", redirect))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed successfully"})
}

// redirectAllowed reports whether the target shares scheme and host with the
// configured redirect origin
func redirectAllowed(origin, target string) bool {
	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}
	targetURL, err := url.Parse(target)
	if err != nil {
		return false
	}
	return targetURL.Scheme == originURL.Scheme && targetURL.Host == originURL.Host
}
