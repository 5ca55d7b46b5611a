package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers that branch on it.
type Kind string

const (
	KindInvalidRole    Kind = "invalid_role"
	KindInvalidStatus  Kind = "invalid_status"
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation_error"
	KindUnknownCommand Kind = "unknown_command"
	KindRateLimited    Kind = "rate_limited"
	KindInfrastructure Kind = "infrastructure_error"
)

var (
	ErrInvalidRole       = New(KindInvalidRole, "invalid_role", nil)
	ErrInvalidStatus     = New(KindInvalidStatus, "invalid_status", nil)
	ErrUserNotFound      = New(KindNotFound, "user_not_found", nil)
	ErrRequestNotFound   = New(KindNotFound, "not_found", nil)
	ErrCallbackNotFound  = New(KindNotFound, "callback_not_found", nil)
	ErrBroadcastNotFound = New(KindNotFound, "broadcast_not_found", nil)
	// ErrUnknownUser is returned by operations that refuse to auto-provision a user.
	ErrUnknownUser       = New(KindValidation, "user not found", nil)
	ErrRateLimitExceeded = New(KindRateLimited, "rate_limit_exceeded", nil)
)

// AppError carries the error kind and the message shown to the caller.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return New(KindValidation, message, nil)
}

func UnknownCommand(name string) *AppError {
	return New(KindUnknownCommand, "unknown function: "+name, nil)
}

// Infrastructure wraps a store or connection failure. The original message is kept.
func Infrastructure(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(KindInfrastructure, "", err)
}

// KindOf reports the kind of err. Errors that are not AppErrors are infrastructure errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

// Message returns the text a caller should see for err, skipping any wrapping context
// added on the way up.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}

// MapErrorToStatus maps error kinds to HTTP status codes
func MapErrorToStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRole, KindInvalidStatus, KindValidation:
		return http.StatusBadRequest
	case KindUnknownCommand:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
