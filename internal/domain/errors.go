package domain

import "errors"

var (
	// ErrNotFound covers unknown organization or case ids.
	ErrNotFound = errors.New("record not found")
	// ErrOnboardingLocked rejects disclosure edits while a case is under
	// review or already approved.
	ErrOnboardingLocked = errors.New("onboarding is locked")
	// ErrRoleMismatch rejects role-gated steps submitted by the wrong role.
	ErrRoleMismatch = errors.New("step not allowed for role")
	// ErrConflict covers duplicate unique identifiers (tax numbers).
	ErrConflict = errors.New("duplicate identifier")
	// ErrInvalidArgument covers missing or malformed request fields.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidTransition rejects review actions on a case that is not in
	// the required source state.
	ErrInvalidTransition = errors.New("invalid case transition")
)
