package users

import (
	"fmt"
)

// UserError represents errors raised by user lifecycle operations
type UserError struct {
	Type    string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s]: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s]: %s", e.Type, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// User error types
const (
	UserErrorTypeNotFound       = "not_found"
	UserErrorTypeAlreadyExists  = "already_exists"
	UserErrorTypeInvalidRequest = "invalid_request"
)

// NewUserNotFoundError creates an error for when no active user matches the lookup
func NewUserNotFoundError(field string, value interface{}) *UserError {
	return &UserError{
		Type:    UserErrorTypeNotFound,
		Message: fmt.Sprintf("User not found with %s: %v", field, value),
	}
}

// NewUsernameExistsError creates an error for a username uniqueness conflict
func NewUsernameExistsError() *UserError {
	return &UserError{
		Type:    UserErrorTypeAlreadyExists,
		Message: "Username already exists",
	}
}

// NewEmailExistsError creates an error for an email uniqueness conflict
func NewEmailExistsError() *UserError {
	return &UserError{
		Type:    UserErrorTypeAlreadyExists,
		Message: "Email already exists",
	}
}

// NewInvalidRequestError creates an error for a malformed request value
func NewInvalidRequestError(message string) *UserError {
	return &UserError{
		Type:    UserErrorTypeInvalidRequest,
		Message: message,
	}
}
