package provision

import (
	"errors"
	"fmt"
)

// Errors raised by the provisioning saga. ErrIdentityConflict is
// user-correctable; the write errors indicate a rolled-back registration;
// a CompensationError means manual cleanup is required.
var (
	ErrIdentityConflict    = errors.New("email already registered")
	ErrIdentityUnavailable = errors.New("identity service unavailable")
	ErrTenantWrite         = errors.New("store record creation failed")
	ErrMembershipWrite     = errors.New("admin user creation failed")
)

// CompensationError reports that a provisioning step failed and the
// compensating identity delete failed as well. Both causes are carried so
// an operator can reconcile the leftover identity by hand. Callers must not
// retry registration while this state is unresolved.
type CompensationError struct {
	Cause           error
	CompensationErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("provisioning failed (%v) and compensation failed (%v); manual cleanup required",
		e.Cause, e.CompensationErr)
}

// Unwrap exposes both underlying errors to errors.Is/As
func (e *CompensationError) Unwrap() []error {
	return []error{e.Cause, e.CompensationErr}
}
