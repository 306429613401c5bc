package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sentinel errors for identity operations
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrTokenNotFound      = errors.New("confirmation token not found")
)

// CreateRequest carries the inputs for a new identity
type CreateRequest struct {
	Email    string
	Password string
	Role     string
	// RedirectOrigin is the caller-controlled origin used to build the
	// confirmation link sent by email.
	RedirectOrigin string
}

// Service owns the identity lifecycle: account creation with a confirmation
// email, credential checks, and the administrative delete used as the
// compensating action during store provisioning.
type Service struct {
	db     *gorm.DB
	mailer Mailer
}

// NewService creates an identity service backed by the given database
func NewService(db *gorm.DB, mailer Mailer) *Service {
	return &Service{db: db, mailer: mailer}
}

// CreateIdentity registers a new account with the given role claim and asks
// the mailer to send a confirmation link. A mail failure does not fail the
// call: the account exists and the user can request a resend.
func (s *Service) CreateIdentity(ctx context.Context, req CreateRequest) (*model.Identity, error) {
	log := logger.FromContext(ctx)

	var existing model.Identity
	result := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("identity lookup failed: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ident := model.Identity{
		ID:                uuid.New().String(),
		Email:             req.Email,
		Password:          string(hashedPassword),
		Role:              req.Role,
		ConfirmationToken: uuid.New().String(),
	}

	if result := s.db.WithContext(ctx).Create(&ident); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", result.Error)
	}

	link := ConfirmationLink(req.RedirectOrigin, ident.ConfirmationToken)
	if err := s.mailer.Send(ctx, ident.Email, "Confirme a sua conta", link); err != nil {
		log.Warn("Failed to send confirmation email",
			zap.String("email", ident.Email),
			zap.Error(err))
	}

	log.Info("Identity created",
		zap.String("identity_id", ident.ID),
		zap.String("email", ident.Email),
		zap.String("role", ident.Role))

	return &ident, nil
}

// DeleteIdentity hard-deletes an identity. This is the administrative
// operation used to compensate a partially provisioned store; it must free
// the unique email index so the same address can register again.
func (s *Service) DeleteIdentity(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&model.Identity{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete identity %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// Authenticate checks credentials and returns the identity on success
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	var ident model.Identity
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&ident)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity lookup failed: %w", result.Error)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &ident, nil
}

// Confirm redeems a confirmation token and marks the identity as confirmed
func (s *Service) Confirm(ctx context.Context, token string) (*model.Identity, error) {
	var ident model.Identity
	result := s.db.WithContext(ctx).Where("confirmation_token = ?", token).First(&ident)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("identity lookup failed: %w", result.Error)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"confirmed_at":       &now,
		"confirmation_token": "",
	}
	if result := s.db.WithContext(ctx).Model(&ident).Updates(updates); result.Error != nil {
		return nil, fmt.Errorf("failed to confirm identity: %w", result.Error)
	}

	ident.ConfirmedAt = &now
	return &ident, nil
}

// ConfirmationLink builds the confirmation URL for the given origin and token
func ConfirmationLink(origin, token string) string {
	return fmt.Sprintf("%s/login?confirmation_token=%s", origin, token)
}
