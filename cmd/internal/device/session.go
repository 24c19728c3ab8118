// Package device is the session lifecycle core: the concurrency-safe registry
// of per-device sessions and the controller that creates, transitions, and
// tears them down.
package device

import (
	"sync"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/waclient"
)

// Status is a device's lifecycle state. Exactly one current value per device.
type Status string

const (
	// StatusInitializing covers the window between create and the first
	// client event.
	StatusInitializing Status = "initializing"
	// StatusAwaitingScan means a credential challenge is pending out-of-band
	// approval.
	StatusAwaitingScan Status = "awaiting_scan"
	// StatusReady means the session is authenticated and usable.
	StatusReady Status = "ready"
	// StatusDisconnected is terminal: the session dropped or was disconnected.
	StatusDisconnected Status = "disconnected"
	// StatusAuthFailed is terminal: credentials were rejected.
	StatusAuthFailed Status = "auth_failed"
	// StatusReconnected is an explicit relabel of a still-live session.
	StatusReconnected Status = "reconnected"
)

// Terminal reports whether the status ends the session's useful life.
func (s Status) Terminal() bool {
	return s == StatusDisconnected || s == StatusAuthFailed
}

// DeviceSession is one registry entry. The entry exclusively owns its opaque
// session handle; detach hands the handle out exactly once so the client is
// never driven after teardown.
type DeviceSession struct {
	ID string

	mu             sync.Mutex
	status         Status
	lastTransition time.Time
	sess           waclient.Session
}

func newDeviceSession(id string, sess waclient.Session, now time.Time) *DeviceSession {
	return &DeviceSession{
		ID:             id,
		status:         StatusInitializing,
		lastTransition: now,
		sess:           sess,
	}
}

// Status returns the current status and when it was entered.
func (d *DeviceSession) Status() (Status, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.lastTransition
}

func (d *DeviceSession) setStatus(to Status, now time.Time) {
	d.mu.Lock()
	d.status = to
	d.lastTransition = now
	d.mu.Unlock()
}

// Session returns the live handle, or nil once the session was detached for
// teardown.
func (d *DeviceSession) Session() waclient.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess
}

// detach removes and returns the session handle. Second and later calls
// return nil, making teardown single-shot.
func (d *DeviceSession) detach() waclient.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.sess
	d.sess = nil
	return s
}
