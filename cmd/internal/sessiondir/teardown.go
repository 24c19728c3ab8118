package sessiondir

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultRoot is where the session backend keeps per-device storage.
const DefaultRoot = ".wwebjs_auth"

// Teardown resolves a device's on-disk session directory and reclaims it.
// It wraps the session backend's logout hook: "already gone" is success,
// everything else surfaces as a TeardownError.
type Teardown struct {
	log       *slog.Logger
	root      string
	reclaimer *Reclaimer
}

// NewTeardown constructs a Teardown rooted at root (DefaultRoot when empty).
func NewTeardown(log *slog.Logger, root string, reclaimer *Reclaimer) *Teardown {
	if log == nil {
		log = slog.Default()
	}
	if root == "" {
		root = DefaultRoot
	}
	if reclaimer == nil {
		reclaimer = NewReclaimer(log, 0, 0)
	}
	return &Teardown{log: log, root: root, reclaimer: reclaimer}
}

// Path returns the session directory for a device id. The mapping is
// deterministic: <root>/session-<deviceID>.
func (t *Teardown) Path(deviceID string) string {
	return filepath.Join(t.root, "session-"+deviceID)
}

// Run deletes the device's session directory. A directory that does not
// exist is success (idempotent logout).
func (t *Teardown) Run(ctx context.Context, deviceID string) error {
	path := t.Path(deviceID)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.log.Info("teardown.already_gone", "device_id", deviceID, "path", path)
			return nil
		}
		return TeardownError{DeviceID: deviceID, Err: err}
	}

	t.log.Info("teardown.reclaim", "device_id", deviceID, "path", path)

	if err := t.reclaimer.Reclaim(ctx, path); err != nil {
		return TeardownError{DeviceID: deviceID, Err: err}
	}

	t.log.Info("teardown.done", "device_id", deviceID)
	return nil
}
