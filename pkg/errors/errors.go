package errors

import (
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"
)

type baseError struct {
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// PublicMessage returns the message without the wrapped cause
func (e *baseError) PublicMessage() string {
	return e.message
}

// HTTPError is implemented by every typed error of this package
type HTTPError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// ValidationError represents a validation error (HTTP 400)
type ValidationError struct {
	baseError
}

func (e *ValidationError) HTTPStatus() int { return fasthttp.StatusBadRequest }

func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError{message: message}}
}

func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{baseError{message: fmt.Sprintf(format, args...)}}
}

// UnauthorizedError represents an authentication error (HTTP 401)
type UnauthorizedError struct {
	baseError
}

func (e *UnauthorizedError) HTTPStatus() int { return fasthttp.StatusUnauthorized }

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{baseError{message: message}}
}

// NotFoundError represents a not found error (HTTP 404)
type NotFoundError struct {
	baseError
}

func (e *NotFoundError) HTTPStatus() int { return fasthttp.StatusNotFound }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{baseError{message: message}}
}

func NewNotFoundErrorf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{baseError{message: fmt.Sprintf(format, args...)}}
}

// WrapNotFound reports cause as a not found error with the given message
func WrapNotFound(message string, cause error) *NotFoundError {
	return &NotFoundError{baseError{message: message, cause: cause}}
}

// InternalError represents an internal server error (HTTP 500)
type InternalError struct {
	baseError
}

func (e *InternalError) HTTPStatus() int { return fasthttp.StatusInternalServerError }

func NewInternalError(message string) *InternalError {
	return &InternalError{baseError{message: message}}
}

func NewInternalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{baseError{message: fmt.Sprintf(format, args...)}}
}

// ServiceUnavailableError represents a service unavailable error (HTTP 503)
type ServiceUnavailableError struct {
	baseError
}

func (e *ServiceUnavailableError) HTTPStatus() int { return fasthttp.StatusServiceUnavailable }

func NewServiceUnavailableError(message string) *ServiceUnavailableError {
	return &ServiceUnavailableError{baseError{message: message}}
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
