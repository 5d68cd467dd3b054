// Package apperr defines the error kinds surfaced by services: validation
// failures, transport failures, authentication failures and everything else.
package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// AppError wraps any failure that is not more specifically classified.
type AppError struct {
	Op  string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Op + ": unknown error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// ValidationError reports bad or missing input.
type ValidationError struct {
	Op      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Message)
}

// NetworkError reports that a store or provider was unreachable or rejected
// the request at the transport level.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError reports an authentication failure. Code is a stable machine
// identifier such as "invalid_credentials".
type AuthError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Auth error codes.
const (
	CodeInvalidCredentials      = "invalid_credentials"
	CodeEmailNotConfirmed       = "email_not_confirmed"
	CodeEmailTaken              = "email_taken"
	CodeInvalidVerificationCode = "invalid_verification_code"
	CodeSessionNotFound         = "session_not_found"
	CodeSessionExpired          = "session_expired"
)

// Validation builds a ValidationError.
func Validation(op, field, message string) error {
	return &ValidationError{Op: op, Field: field, Message: message}
}

// Auth builds an AuthError.
func Auth(op, code, message string) error {
	return &AuthError{Op: op, Code: code, Message: message}
}

// Wrap tags err with op. Errors that already carry a kind are returned
// unchanged; transport failures become NetworkError; anything else AppError.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	if isTransport(err) {
		return &NetworkError{Op: op, Err: err}
	}
	return &AppError{Op: op, Err: err}
}

// Classified reports whether err already carries one of the kinds above.
func Classified(err error) bool {
	var (
		appErr  *AppError
		valErr  *ValidationError
		netErr  *NetworkError
		authErr *AuthError
	)
	return errors.As(err, &appErr) || errors.As(err, &valErr) ||
		errors.As(err, &netErr) || errors.As(err, &authErr)
}

func isTransport(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// AuthCode returns the code of the AuthError in err's chain, or "".
func AuthCode(err error) string {
	var target *AuthError
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}

// Op returns the operation tag of the first classified error in err's chain.
func Op(err error) string {
	var (
		appErr  *AppError
		valErr  *ValidationError
		netErr  *NetworkError
		authErr *AuthError
	)
	switch {
	case errors.As(err, &valErr):
		return valErr.Op
	case errors.As(err, &authErr):
		return authErr.Op
	case errors.As(err, &netErr):
		return netErr.Op
	case errors.As(err, &appErr):
		return appErr.Op
	}
	return ""
}
