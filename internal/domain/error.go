package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state for this operation")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrRateLimited     = errors.New("too many requests")

	// Storage errors
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Subscription engine
	ErrPackUnavailable       = fmt.Errorf("pack not found or inactive: %w", ErrNotFound)
	ErrNoPayableSubscription = fmt.Errorf("no subscription awaiting payment: %w", ErrNotFound)
	ErrSubscriptionClosed    = fmt.Errorf("subscription is cancelled or expired: %w", ErrInvalidState)

	// Accounts
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrAccountDisabled    = fmt.Errorf("account is disabled: %w", ErrForbidden)

	// Adapters
	ErrStorageUnavailable = errors.New("object storage is not configured")
	ErrTextTooLong        = fmt.Errorf("text exceeds the correction limit: %w", ErrInvalidArgument)
)
