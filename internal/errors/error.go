package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryUsage    Category = "usage"
	CategoryRuntime  Category = "runtime"
	CategoryInternal Category = "internal"
)

// SyncError is a structured error with a stable code, a fix suggestion,
// and a documentation link.
//
// Usage errors report structural misuse (for example, constructing a
// signal resource without a coordinator) and are returned to callers.
// Internal errors indicate a broken invariant in the coordination
// machinery itself; they are raised via Panic and never swallowed.
type SyncError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (usage, runtime, internal).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SyncError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a SyncError carrying the same code.
// This lets callers match registered errors without holding the
// instance returned to them.
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SyncError) WithSuggestion(s string) *SyncError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SyncError) WithDetail(d string) *SyncError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *SyncError) Wrap(err error) *SyncError {
	e.Wrapped = err
	return e
}

// New creates a SyncError from a registered error code.
func New(code string) *SyncError {
	template, ok := registry[code]
	if !ok {
		return &SyncError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SyncError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new SyncError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SyncError {
	return &SyncError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Panic raises a registered internal error. Internal errors mean the
// coordination machinery broke one of its own invariants, which is
// never recoverable by the caller.
func Panic(code string) {
	panic(New(code))
}
