// Package apierrors contains the error types exchanged between services and HTTP handlers.
package apierrors

import (
	"fmt"
	"net/http"
)

// APIError is an error that carries the HTTP status code it should be answered with.
type APIError struct {
	Detail string `json:"detail"`
	status int
}

// Option configures an APIError.
type Option func(apiError *APIError)

// WithDetail sets the error detail message.
func WithDetail(detail string) Option {
	return func(apiError *APIError) {
		apiError.Detail = detail
	}
}

// WithHTTPStatusCode sets the HTTP status code associated to the error.
func WithHTTPStatusCode(status int) Option {
	return func(apiError *APIError) {
		apiError.status = status
	}
}

// NewAPIError creates a new APIError based on the given options.
func NewAPIError(opts ...Option) *APIError {
	apiError := &APIError{status: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

func (a *APIError) Error() string {
	return a.Detail
}

// HTTPStatusCode gets the HTTP status code associated to the error.
func (a *APIError) HTTPStatusCode() int {
	return a.status
}

// ValidationError is an error caused by a malformed or missing field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}
