package device

import "errors"

var (
	// ErrDeviceNotFound is returned when the target device has no registry entry.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSessionGone is returned when a registry entry exists but its session
	// has already been torn down (terminal status kept for introspection).
	ErrSessionGone = errors.New("device session no longer live")

	// ErrMethodNotPermitted is returned when an execute request names a
	// method outside the allow-list, or when execute dispatch is disabled.
	ErrMethodNotPermitted = errors.New("method not permitted")

	// ErrMediaFetch is returned when an attachment cannot be retrieved from
	// the caller-supplied URL.
	ErrMediaFetch = errors.New("media fetch failed")

	// ErrTimeout is returned when a client operation exceeded its bound.
	ErrTimeout = errors.New("operation timed out")
)
