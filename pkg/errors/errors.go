package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on code so that errors.Is works against the predefined values
// even after Clone or WithDetails.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrUnavailable        = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
)

// Timetable generation failures.
var (
	ErrSessionNotFound           = New("SESSION_NOT_FOUND", http.StatusNotFound, "academic session not found")
	ErrSessionLocked             = New("SESSION_LOCKED", http.StatusLocked, "academic session is locked")
	ErrSessionArchived           = New("SESSION_ARCHIVED", http.StatusConflict, "academic session is archived")
	ErrTemplateMissing           = New("TEMPLATE_MISSING", http.StatusPreconditionFailed, "no active timetable template configured")
	ErrNoSubjectsConfigured      = New("NO_SUBJECTS_CONFIGURED", http.StatusPreconditionFailed, "no subject requirements configured for this section")
	ErrCapacityExceeded          = New("CAPACITY_EXCEEDED", http.StatusUnprocessableEntity, "required periods exceed the available weekly slots")
	ErrUnsatisfiableRequirements = New("UNSATISFIABLE_REQUIREMENTS", http.StatusUnprocessableEntity, "some subject requirements could not be placed")
	ErrIntegrityViolation        = New("INTEGRITY_VIOLATION", http.StatusConflict, "assignments reference unknown subjects or teachers")
	ErrDuplicateSlot             = New("DUPLICATE_SLOT", http.StatusConflict, "a timetable slot was written twice")
	ErrGenerationInProgress      = New("GENERATION_IN_PROGRESS", http.StatusConflict, "a timetable is already being generated for this section")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of err carrying a structured payload for the client.
func WithDetails(err *Error, details interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}
