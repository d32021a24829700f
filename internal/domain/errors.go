package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyExists    = errors.New("already exists")
	ErrStorageFailure   = errors.New("storage failure")

	// ErrAuthorityForbidden is returned when a non-admin asks for a deny-listed
	// authority by name.
	ErrAuthorityForbidden = fmt.Errorf("%w: authority is forbidden for anonymous access", ErrPermissionDenied)
)
