// Package businessflow contains the core business logic and use cases for the link-in-bio backend
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("user is inactive")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// Link-related errors
	ErrLinkNotFound     = errors.New("link not found")
	ErrLinkInactive     = errors.New("link is not active")
	ErrLinkAccessDenied = errors.New("link access denied")
	ErrInvalidLinkURL   = errors.New("link URL is invalid")

	// Analytics errors
	ErrInvalidWindowDays = errors.New("window days must be between 1 and 365")

	// Scheduler errors
	ErrJobAlreadyRunning = errors.New("weekly summary job is already running")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether the error is a client-visible not-found condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrLinkNotFound)
}

// IsValidationFailure reports whether the error rejects malformed input
func IsValidationFailure(err error) bool {
	return errors.Is(err, ErrInvalidLinkURL) || errors.Is(err, ErrInvalidWindowDays) ||
		errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrUsernameAlreadyExists)
}
