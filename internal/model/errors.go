package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidRole     = errors.New("invalid account role")
	ErrAlreadyDual     = errors.New("account already holds both roles")
	ErrEmailTaken      = errors.New("email already registered to another account")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Directory errors
	ErrDirectoryUnavailable = errors.New("club directory unavailable")
	ErrClubNotFound         = errors.New("club not found")
)
