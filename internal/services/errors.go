package services

import (
	"errors"
	"fmt"
)

var (
	ErrIdentityExists   = errors.New("user already exists with this email")
	ErrIdentityNotFound = errors.New("user not found with this email")
	// ErrInvalidOrExpiredCode covers wrong, used and expired codes alike.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrDispatchFailure      = errors.New("failed to send")
	ErrPersistenceFailure   = errors.New("failed to store")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	ErrOrderNotFound    = errors.New("order not found")
	ErrFoodItemNotFound = errors.New("food item not found")
)

// ValidationError is a client input problem tied to one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}
