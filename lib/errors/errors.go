// Package errors defines the error taxonomy shared by the matrix profile
// core and its façade. Every kind is its own type so callers can tell them
// apart with errors.As instead of parsing messages.
package errors

import "fmt"

// ShapeMismatch is returned when an input violates n >= m, m >= 3, or an
// L-derived buffer length.
type ShapeMismatch struct {
	Reason string
}

func (e *ShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %s", e.Reason)
}

// NotInitialized is returned when a façade kernel is called before
// Initialize, or Finalize is called twice.
type NotInitialized struct{}

func (e *NotInitialized) Error() string { return "quickmp: backend is not initialized" }

// AlreadyInitialized is returned by a second Initialize call without an
// intervening Finalize.
type AlreadyInitialized struct{}

func (e *AlreadyInitialized) Error() string { return "quickmp: backend is already initialized" }

// InvalidDevice is returned by UseDevice for an out-of-range id, or any
// non-zero id on the CPU backend.
type InvalidDevice struct {
	Requested int
}

func (e *InvalidDevice) Error() string {
	return fmt.Sprintf("quickmp: invalid device %d (CPU backend only has device 0)", e.Requested)
}

// ResourceExhausted stands for a failed scratch allocation. No code path in
// the CPU backend returns it: Go's allocator turns out-of-memory into a
// fatal runtime error instead, so this exists mainly so callers have
// something to check for.
type ResourceExhausted struct {
	Reason string
}

func (e *ResourceExhausted) Error() string {
	return fmt.Sprintf("quickmp: resource exhausted: %s", e.Reason)
}

// InternalNumeric is reserved for FFT-backed paths that detect a
// catastrophic NaN or overflow. The CPU reference path (naive dot product,
// prefix-sum statistics) never raises it.
type InternalNumeric struct {
	Reason string
}

func (e *InternalNumeric) Error() string {
	return fmt.Sprintf("quickmp: internal numeric error: %s", e.Reason)
}

// NewShapeMismatch is a convenience constructor used throughout lib/stats,
// lib/dotproduct and lib/stomp.
func NewShapeMismatch(format string, args ...interface{}) error {
	return &ShapeMismatch{Reason: fmt.Sprintf(format, args...)}
}
