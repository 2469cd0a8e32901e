package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryStore   Category = "store"
	CategoryBinding Category = "binding"
	CategoryConfig  Category = "config"
)

// Report is a structured error with a code, an explanation and a hint.
type Report struct {
	// Code is a unique error identifier (e.g., "S001").
	Code string

	// Category is the error type (store, binding, config).
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
func (r *Report) Error() string {
	if r.Code != "" {
		return fmt.Sprintf("%s: %s", r.Code, r.Message)
	}
	return r.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (r *Report) Unwrap() error {
	return r.Wrapped
}

// WithDetail sets the detailed explanation.
func (r *Report) WithDetail(detail string) *Report {
	r.Detail = detail
	return r
}

// WithSuggestion adds a hint on how to fix the error.
func (r *Report) WithSuggestion(suggestion string) *Report {
	r.Suggestion = suggestion
	return r
}

// Wrap wraps another error.
func (r *Report) Wrap(err error) *Report {
	r.Wrapped = err
	return r
}

// New creates a Report from a registered error code.
func New(code string) *Report {
	template, ok := registry[code]
	if !ok {
		return &Report{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Report{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Report with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Report {
	return &Report{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Reporter is implemented by errors that can describe themselves as a Report.
type Reporter interface {
	Report() *Report
}

// FromError converts err into a Report. Errors implementing Reporter anywhere
// in their chain produce their own report; anything else is wrapped with code.
func FromError(err error, code string) *Report {
	if err == nil {
		return nil
	}
	var rep *Report
	if errors.As(err, &rep) {
		return rep
	}
	var r Reporter
	if errors.As(err, &r) {
		return r.Report().Wrap(err)
	}
	return New(code).Wrap(err)
}
