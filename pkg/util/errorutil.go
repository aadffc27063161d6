package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewConflict reports a lost transition race.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewUnsupportedFileType rejects an attachment outside the allow-list.
func NewUnsupportedFileType(ext string) error {
	return NewDomainError("UNSUPPORTED_FILE_TYPE",
		"file type not supported: upload PDF, image, or Excel files only",
		http.StatusBadRequest, map[string]any{"extension": ext})
}

// NewStorageFailure wraps a blob store upload error.
func NewStorageFailure(err error) error {
	return &DomainError{
		Code:       "STORAGE_FAILURE",
		Message:    "file storage is unavailable - try again",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewPersistenceFailure wraps a database write that failed mid-sequence.
func NewPersistenceFailure(err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_FAILURE",
		Message:    "a dependent service is unavailable - try again",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewDeliveryFailure wraps an email provider error.
func NewDeliveryFailure(err error) error {
	return &DomainError{
		Code:       "DELIVERY_FAILURE",
		Message:    "email delivery failed - the notification will be retried",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
