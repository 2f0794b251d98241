package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
)

// Category represents the type of error.
type Category string

const (
	CategoryRender    Category = "render"
	CategoryHydration Category = "hydration"
	CategoryEvaluator Category = "evaluator"
	CategoryDirective Category = "directive"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// DrizzleError is a structured error with a registered code, a suggestion
// and an optional wrapped cause.
type DrizzleError struct {
	// Code is a unique error identifier (e.g., "E040").
	Code string

	// Category is the error type (render, hydration, etc.).
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
func (e *DrizzleError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DrizzleError) Unwrap() error {
	return e.Wrapped
}

// Is matches another DrizzleError by code, so errors.Is(err, New("E040"))
// works without comparing pointers.
func (e *DrizzleError) Is(target error) bool {
	t, ok := target.(*DrizzleError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DrizzleError) WithSuggestion(s string) *DrizzleError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DrizzleError) WithDetail(d string) *DrizzleError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *DrizzleError) Wrap(err error) *DrizzleError {
	e.Wrapped = err
	return e
}

// LogAttrs returns the slog attributes describing this error.
func (e *DrizzleError) LogAttrs() []any {
	attrs := []any{slog.String("code", e.Code), slog.String("category", string(e.Category))}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return attrs
}

// New creates a DrizzleError from a registered error code.
func New(code string) *DrizzleError {
	template, ok := registry[code]
	if !ok {
		return &DrizzleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DrizzleError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new DrizzleError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DrizzleError {
	return &DrizzleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DrizzleError.
func FromError(err error, code string) *DrizzleError {
	if err == nil {
		return nil
	}
	var de *DrizzleError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first DrizzleError in err's chain, or "".
func CodeOf(err error) string {
	var de *DrizzleError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
