// Package errors provides structured errors for the sync-ssr library.
//
// Each registered error carries a stable code (E1xx for usage errors,
// E2xx for internal invariant violations), a category, and enough
// context for the caller to fix the problem at the call site. Usage
// errors are returned; internal errors are raised via Panic since they
// indicate the coordination machinery itself is broken.
package errors
