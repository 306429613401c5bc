package provision

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"time"

	"github.com/kitandahub/kitanda/internal/identity"
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/kitandahub/kitanda/pkg/metrics"
	"go.uber.org/zap"
)

// IdentityService is the identity collaborator consumed by the saga
type IdentityService interface {
	CreateIdentity(ctx context.Context, req identity.CreateRequest) (*model.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
}

// TenantStore persists store records
type TenantStore interface {
	Insert(ctx context.Context, store *model.Store) error
}

// MembershipStore persists store users
type MembershipStore interface {
	Insert(ctx context.Context, user *model.StoreUser) error
}

// ActivityStore persists activity feed entries
type ActivityStore interface {
	Insert(ctx context.Context, activity *model.Activity) error
}

// Input is a validated store registration request. The caller validates
// presence and shape before invoking the saga; the saga itself relies on
// the downstream services for anything further (email uniqueness, password
// policy).
type Input struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Province    string  `json:"province"`
	StoreType   string  `json:"store_type"`
	Phone       string  `json:"phone"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// RedirectOrigin is the caller's origin, used for the confirmation link
	RedirectOrigin string `json:"-"`
}

// Validate checks presence and shape of the registration input. It belongs
// to the boundary, not the saga: Run assumes it has already been called.
func (in *Input) Validate() error {
	if in.Name == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return errors.New("a valid email is required")
	}
	if len(in.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if math.IsNaN(in.Latitude) || math.IsInf(in.Latitude, 0) || in.Latitude < -90 || in.Latitude > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if math.IsNaN(in.Longitude) || math.IsInf(in.Longitude, 0) || in.Longitude < -180 || in.Longitude > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// Result is the saga outcome: the terminal state, the full transition log,
// and the created records when provisioning completed.
type Result struct {
	State       State
	Transitions []Transition
	Identity    *model.Identity
	Store       *model.Store
}

func (r *Result) advance(to State) {
	r.Transitions = append(r.Transitions, Transition{From: r.State, To: to, At: time.Now()})
	r.State = to
}

// Saga provisions a new store end-to-end: identity, store record, bootstrap
// admin user, activity entry. If any step after identity creation fails, the
// identity is deleted again so no orphaned account remains. The saga never
// retries a step and cannot be cancelled once the identity exists: it always
// runs to a terminal state before returning.
type Saga struct {
	identities IdentityService
	stores     TenantStore
	members    MembershipStore
	activities ActivityStore
}

// NewSaga wires the saga with its collaborators
func NewSaga(identities IdentityService, stores TenantStore, members MembershipStore, activities ActivityStore) *Saga {
	return &Saga{
		identities: identities,
		stores:     stores,
		members:    members,
		activities: activities,
	}
}

// Run executes the provisioning sequence. The returned Result always carries
// a terminal state, also on error.
func (s *Saga) Run(ctx context.Context, in Input) (*Result, error) {
	log := logger.FromContext(ctx)
	metrics.RegistrationCounter.Inc()

	res := &Result{State: StateStart}

	ident, err := s.identities.CreateIdentity(ctx, identity.CreateRequest{
		Email:          in.Email,
		Password:       in.Password,
		Role:           "store_owner",
		RedirectOrigin: in.RedirectOrigin,
	})
	if err != nil {
		// Nothing downstream exists yet, so there is nothing to compensate
		res.advance(StateFailed)
		metrics.RecordRegistrationOutcome(res.State.MetricLabel())
		if errors.Is(err, identity.ErrEmailTaken) {
			return res, fmt.Errorf("%w: %s", ErrIdentityConflict, in.Email)
		}
		return res, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	res.advance(StateIdentityCreated)
	res.Identity = ident

	store := &model.Store{
		Name:        in.Name,
		Email:       in.Email,
		Province:    in.Province,
		StoreType:   in.StoreType,
		Phone:       in.Phone,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		OwnerID:     ident.ID,
	}
	if err := s.stores.Insert(ctx, store); err != nil {
		return s.compensate(ctx, res, fmt.Errorf("%w: %v", ErrTenantWrite, err))
	}
	res.advance(StateTenantCreated)
	res.Store = store

	admin := &model.StoreUser{
		Name:    in.Name,
		Email:   in.Email,
		Role:    model.RoleAdmin,
		StoreID: store.ID,
	}
	if err := s.members.Insert(ctx, admin); err != nil {
		return s.compensate(ctx, res, fmt.Errorf("%w: %v", ErrMembershipWrite, err))
	}
	res.advance(StateMembershipCreated)

	// Best-effort: the store is fully usable at this point, so a missing
	// activity entry is reported but never rolls the registration back.
	activity := &model.Activity{
		StoreID:      store.ID,
		UserID:       ident.ID,
		UserName:     in.Email,
		ActionType:   model.ActionCreate,
		ResourceType: "user",
		Description:  "Loja criada e administrador configurado",
	}
	if err := s.activities.Insert(ctx, activity); err != nil {
		log.Warn("Failed to write registration activity entry",
			zap.Uint("store_id", store.ID),
			zap.Error(err))
		metrics.AuditWriteFailureCounter.Inc()
	} else {
		res.advance(StateAudited)
	}

	res.advance(StateComplete)
	metrics.RecordRegistrationOutcome(res.State.MetricLabel())

	log.Info("Store provisioned",
		zap.Uint("store_id", store.ID),
		zap.String("identity_id", ident.ID),
		zap.String("email", in.Email))

	return res, nil
}

// compensate deletes the identity created in step one and re-raises the
// original cause. If the delete itself fails, both errors are surfaced.
func (s *Saga) compensate(ctx context.Context, res *Result, cause error) (*Result, error) {
	log := logger.FromContext(ctx)

	res.advance(StateCompensating)
	log.Warn("Provisioning step failed, compensating",
		zap.String("identity_id", res.Identity.ID),
		zap.Error(cause))

	if err := s.identities.DeleteIdentity(ctx, res.Identity.ID); err != nil {
		res.advance(StateCompensationFailed)
		metrics.RecordRegistrationOutcome(res.State.MetricLabel())
		log.Error("Compensating identity delete failed",
			zap.String("identity_id", res.Identity.ID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return res, &CompensationError{Cause: cause, CompensationErr: err}
	}

	res.advance(StateRolledBack)
	metrics.RecordRegistrationOutcome(res.State.MetricLabel())
	return res, cause
}
