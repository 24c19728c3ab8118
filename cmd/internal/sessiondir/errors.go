package sessiondir

import (
	"errors"
	"fmt"
)

var (
	// ErrRetriesExhausted is returned when a session directory could not be
	// deleted after the full retry sequence, including the lock-file rename
	// fallback.
	ErrRetriesExhausted = errors.New("reclaim retries exhausted")

	// ErrTeardown is the sentinel for any teardown failure other than the
	// directory already being gone.
	ErrTeardown = errors.New("session teardown failed")
)

// TeardownError carries the device whose storage could not be reclaimed.
type TeardownError struct {
	DeviceID string
	Err      error
}

func (e TeardownError) Error() string {
	return fmt.Sprintf("%s: device %s: %v", ErrTeardown.Error(), e.DeviceID, e.Err)
}

func (e TeardownError) Unwrap() error { return ErrTeardown }
