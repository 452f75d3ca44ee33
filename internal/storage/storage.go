package storage

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrUnavailable marks a store that timed out or is unreachable. The
	// request fails as a whole; callers retry the operation, not the call.
	ErrUnavailable = errors.New("storage unavailable")
)
