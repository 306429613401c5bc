package provision

import (
	"strings"
	"time"
)

// State is an explicit saga state. The registration flow always ends in one
// of the terminal states; partial progress is visible in the transition log.
type State string

const (
	StateStart              State = "START"
	StateIdentityCreated    State = "IDENTITY_CREATED"
	StateTenantCreated      State = "TENANT_CREATED"
	StateMembershipCreated  State = "MEMBERSHIP_CREATED"
	StateAudited            State = "AUDITED"
	StateComplete           State = "COMPLETE"
	StateCompensating       State = "COMPENSATING"
	StateRolledBack         State = "ROLLED_BACK"
	StateCompensationFailed State = "COMPENSATION_FAILED"
	StateFailed             State = "FAILED"
)

// Terminal reports whether the saga has finished in this state
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateRolledBack, StateCompensationFailed, StateFailed:
		return true
	}
	return false
}

// MetricLabel returns the prometheus label value for a terminal state
func (s State) MetricLabel() string {
	return strings.ToLower(string(s))
}

// Transition records a single state change with its timestamp
type Transition struct {
	From State
	To   State
	At   time.Time
}
