package provision

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitandahub/kitanda/internal/identity"
	"github.com/kitandahub/kitanda/internal/model"
)

// fakeIdentities mimics the identity service: unique emails, administrative
// delete frees the email again. Every call is appended to the shared call log
// so step ordering can be asserted.
type fakeIdentities struct {
	calls     *[]string
	accounts  map[string]string // email -> id
	createErr error
	deleteErr error
}

func (f *fakeIdentities) CreateIdentity(_ context.Context, req identity.CreateRequest) (*model.Identity, error) {
	*f.calls = append(*f.calls, "create_identity")
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, taken := f.accounts[req.Email]; taken {
		return nil, identity.ErrEmailTaken
	}
	id := uuid.New().String()
	f.accounts[req.Email] = id
	return &model.Identity{ID: id, Email: req.Email, Role: req.Role}, nil
}

func (f *fakeIdentities) DeleteIdentity(_ context.Context, id string) error {
	*f.calls = append(*f.calls, "delete_identity")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for email, accountID := range f.accounts {
		if accountID == id {
			delete(f.accounts, email)
			return nil
		}
	}
	return identity.ErrIdentityNotFound
}

func (f *fakeIdentities) resolvable(email string) bool {
	_, ok := f.accounts[email]
	return ok
}

type fakeTenants struct {
	calls    *[]string
	inserted []*model.Store
	err      error
	nextID   uint
}

func (f *fakeTenants) Insert(_ context.Context, store *model.Store) error {
	*f.calls = append(*f.calls, "insert_store")
	if f.err != nil {
		return f.err
	}
	f.nextID++
	store.ID = f.nextID
	f.inserted = append(f.inserted, store)
	return nil
}

type fakeMembers struct {
	calls    *[]string
	inserted []*model.StoreUser
	err      error
}

func (f *fakeMembers) Insert(_ context.Context, user *model.StoreUser) error {
	*f.calls = append(*f.calls, "insert_store_user")
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, user)
	return nil
}

type fakeActivities struct {
	calls    *[]string
	inserted []*model.Activity
	err      error
}

func (f *fakeActivities) Insert(_ context.Context, activity *model.Activity) error {
	*f.calls = append(*f.calls, "insert_activity")
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, activity)
	return nil
}

type fixture struct {
	calls      []string
	identities *fakeIdentities
	tenants    *fakeTenants
	members    *fakeMembers
	activities *fakeActivities
	saga       *Saga
}

func newFixture() *fixture {
	f := &fixture{}
	f.identities = &fakeIdentities{calls: &f.calls, accounts: map[string]string{}}
	f.tenants = &fakeTenants{calls: &f.calls}
	f.members = &fakeMembers{calls: &f.calls}
	f.activities = &fakeActivities{calls: &f.calls}
	f.saga = NewSaga(f.identities, f.tenants, f.members, f.activities)
	return f
}

func validInput() Input {
	return Input{
		Name:           "Kitanda da Esquina",
		Email:          "dona@example.com",
		Password:       "s3nha-forte",
		Province:       "Luanda",
		StoreType:      "grocery",
		Phone:          "+244923000000",
		Description:    "Mercearia de bairro",
		Latitude:       -8.83,
		Longitude:      13.23,
		RedirectOrigin: "https://app.kitanda.local",
	}
}

func TestRunCompletesAndBootstrapsAdmin(t *testing.T) {
	f := newFixture()

	res, err := f.saga.Run(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	require.NotNil(t, res.Identity)
	require.NotNil(t, res.Store)
	assert.Equal(t, res.Identity.ID, res.Store.OwnerID)

	// Exactly one bootstrap admin for the new store
	require.Len(t, f.members.inserted, 1)
	admin := f.members.inserted[0]
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, res.Store.ID, admin.StoreID)

	require.Len(t, f.activities.inserted, 1)
	assert.Equal(t, model.ActionCreate, f.activities.inserted[0].ActionType)

	assert.Equal(t, []string{"create_identity", "insert_store", "insert_store_user", "insert_activity"}, f.calls)

	// Full transition log including the audit step
	wantStates := []State{StateIdentityCreated, StateTenantCreated, StateMembershipCreated, StateAudited, StateComplete}
	require.Len(t, res.Transitions, len(wantStates))
	for i, tr := range res.Transitions {
		assert.Equal(t, wantStates[i], tr.To)
	}
	assert.Equal(t, StateStart, res.Transitions[0].From)
}

func TestRunDuplicateEmailFailsWithoutCompensation(t *testing.T) {
	f := newFixture()
	f.identities.accounts["dona@example.com"] = uuid.New().String()

	res, err := f.saga.Run(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityConflict)
	assert.Equal(t, StateFailed, res.State)

	// No downstream writes and no compensating delete were attempted
	assert.Equal(t, []string{"create_identity"}, f.calls)
	assert.Empty(t, f.tenants.inserted)
}

func TestRunIdentityServiceDownFails(t *testing.T) {
	f := newFixture()
	f.identities.createErr = errors.New("connection refused")

	res, err := f.saga.Run(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
	assert.Equal(t, StateFailed, res.State)
}

func TestRunStoreInsertFailureRollsBackIdentity(t *testing.T) {
	f := newFixture()
	f.tenants.err = errors.New("constraint violation")

	in := validInput()
	res, err := f.saga.Run(context.Background(), in)
	require.Error(t, err)

	// The original cause is surfaced, not the compensation outcome
	assert.ErrorIs(t, err, ErrTenantWrite)
	assert.Equal(t, StateRolledBack, res.State)

	// No orphaned identity remains resolvable
	assert.False(t, f.identities.resolvable(in.Email))
	assert.Equal(t, []string{"create_identity", "insert_store", "delete_identity"}, f.calls)

	// The email is free again, so the same input succeeds on retry
	f.tenants.err = nil
	res, err = f.saga.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
}

func TestRunMembershipInsertFailureRollsBackIdentity(t *testing.T) {
	f := newFixture()
	f.members.err = errors.New("constraint violation")

	in := validInput()
	res, err := f.saga.Run(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMembershipWrite)
	assert.Equal(t, StateRolledBack, res.State)
	assert.False(t, f.identities.resolvable(in.Email))

	// The store insert happened before the failure, the activity never did
	assert.Equal(t, []string{"create_identity", "insert_store", "insert_store_user", "delete_identity"}, f.calls)
}

func TestRunSurfacesBothErrorsWhenCompensationFails(t *testing.T) {
	f := newFixture()
	f.tenants.err = errors.New("store write exploded")
	f.identities.deleteErr = errors.New("identity service down")

	res, err := f.saga.Run(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, StateCompensationFailed, res.State)

	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.ErrorIs(t, compErr.Cause, ErrTenantWrite)
	assert.ErrorContains(t, compErr.CompensationErr, "identity service down")

	// Both failures are visible in the rendered message
	assert.Contains(t, err.Error(), "store write exploded")
	assert.Contains(t, err.Error(), "identity service down")
}

func TestRunActivityFailureDoesNotFailSaga(t *testing.T) {
	f := newFixture()
	f.activities.err = errors.New("activity table unavailable")

	res, err := f.saga.Run(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	require.NotNil(t, res.Store)

	// No compensation happened and the audit state was skipped
	assert.NotContains(t, f.calls, "delete_identity")
	for _, tr := range res.Transitions {
		assert.NotEqual(t, StateAudited, tr.To)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing name", func(in *Input) { in.Name = "" }},
		{"bad email", func(in *Input) { in.Email = "not-an-email" }},
		{"short password", func(in *Input) { in.Password = "short" }},
		{"latitude out of range", func(in *Input) { in.Latitude = 91 }},
		{"longitude out of range", func(in *Input) { in.Longitude = -181 }},
		{"nan latitude", func(in *Input) { in.Latitude = math.NaN() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}

	in := validInput()
	assert.NoError(t, in.Validate())
}

func TestTerminalStates(t *testing.T) {
	terminal := []State{StateComplete, StateRolledBack, StateCompensationFailed, StateFailed}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), fmt.Sprintf("%s should be terminal", s))
	}
	nonTerminal := []State{StateStart, StateIdentityCreated, StateTenantCreated, StateMembershipCreated, StateAudited, StateCompensating}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), fmt.Sprintf("%s should not be terminal", s))
	}
}
