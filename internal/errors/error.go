package errors

import (
	"errors"
	"fmt"
)

// Category represents the kind of framework error.
type Category string

const (
	CategoryRouting Category = "routing"
	CategoryRender  Category = "render"
	CategoryConfig  Category = "config"
	CategoryStream  Category = "stream"
)

// StrataError is a structured error with a stable code and category.
type StrataError struct {
	// Code is a unique error identifier (e.g., "S201").
	Code string

	// Category is the error kind (routing, render, config, stream).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *StrataError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *StrataError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a longer explanation to the error.
func (e *StrataError) WithDetail(format string, args ...any) *StrataError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *StrataError) WithSuggestion(s string) *StrataError {
	e.Suggestion = s
	return e
}

// Wrap attaches an underlying error.
func (e *StrataError) Wrap(err error) *StrataError {
	e.Wrapped = err
	return e
}

// New creates an error from a registered code. Unknown codes produce a
// config-category error so the mistake is visible instead of silent.
func New(code string) *StrataError {
	tmpl, ok := registry[code]
	if !ok {
		return &StrataError{
			Code:     code,
			Category: CategoryConfig,
			Message:  fmt.Sprintf("unknown error code %q", code),
		}
	}
	return &StrataError{
		Code:       code,
		Category:   tmpl.Category,
		Message:    tmpl.Message,
		Detail:     tmpl.Detail,
		Suggestion: tmpl.Suggestion,
	}
}

// Newf creates an ad-hoc error with the given category and message.
func Newf(category Category, format string, args ...any) *StrataError {
	return &StrataError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsCategory reports whether err (or any error it wraps) is a StrataError
// of the given category.
func IsCategory(err error, category Category) bool {
	var se *StrataError
	if errors.As(err, &se) {
		return se.Category == category
	}
	return false
}
