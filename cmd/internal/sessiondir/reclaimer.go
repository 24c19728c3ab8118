// Package sessiondir reclaims per-device session storage left behind by the
// browser-automation backend. Deletion contends with files the browser still
// holds open, so the reclaimer retries through transient lock errors and
// falls back to renaming the known lock-prone profile files before one final
// pass.
package sessiondir

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const (
	defaultMaxAttempts = 10
	defaultRetryDelay  = 2 * time.Second

	// profileDir is the browser profile subfolder whose files are the usual
	// deletion blockers.
	profileDir = "Default"
)

// lockProneFiles are the profile files most commonly held open by the
// automation process. The rename fallback is scoped to exactly these; it is
// deliberately not generalized.
var lockProneFiles = []string{"chrome_debug.log", "Cookies", "Cookies-journal"}

// Reclaimer deletes session directories with bounded retries.
type Reclaimer struct {
	log         *slog.Logger
	maxAttempts int
	delay       time.Duration

	// removeAll is swappable in tests.
	removeAll func(path string) error

	onRetry func()
}

// NewReclaimer constructs a Reclaimer with safe defaults when inputs are invalid.
func NewReclaimer(log *slog.Logger, maxAttempts int, delay time.Duration) *Reclaimer {
	if log == nil {
		log = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &Reclaimer{
		log:         log,
		maxAttempts: maxAttempts,
		delay:       delay,
		removeAll:   os.RemoveAll,
	}
}

// OnRetry registers a callback invoked once per retried deletion attempt.
func (r *Reclaimer) OnRetry(fn func()) {
	r.onRetry = fn
}

// Reclaim deletes path recursively. It retries transient lock errors up to
// the attempt bound, then renames the known lock-prone files and runs the
// full retry sequence once more. A path that does not exist is success.
func (r *Reclaimer) Reclaim(ctx context.Context, path string) error {
	err := r.deleteWithRetries(ctx, path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		return err
	}

	r.log.Warn("reclaim.rename_fallback", "path", path)
	r.renameLockedFiles(path)

	return r.deleteWithRetries(ctx, path)
}

func (r *Reclaimer) deleteWithRetries(ctx context.Context, path string) error {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.removeAll(path)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if !isTransientLockErr(err) {
			r.log.Error("reclaim.fail", "path", path, "err", err)
			return err
		}

		r.log.Warn("reclaim.retry", "path", path, "attempt", attempt, "max", r.maxAttempts, "err", err)
		if r.onRetry != nil {
			r.onRetry()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}

	return ErrRetriesExhausted
}

// renameLockedFiles moves the known blockers aside so the parent directory
// can be deleted. Rename failures are logged, never fatal: the final delete
// pass decides the outcome.
func (r *Reclaimer) renameLockedFiles(path string) {
	dir := filepath.Join(path, profileDir)
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn("reclaim.profile_dir.stat", "dir", dir, "err", err)
		}
		return
	}

	for _, name := range lockProneFiles {
		src := filepath.Join(dir, name)
		dst := src + ".locked." + time.Now().Format("20060102150405.000000000")
		if err := os.Rename(src, dst); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.log.Warn("reclaim.rename.fail", "file", src, "err", err)
			}
			continue
		}
		r.log.Info("reclaim.rename", "file", src, "renamed", dst)
	}
}

// isTransientLockErr reports whether err looks like file-lock contention from
// the browser process rather than a permanent failure.
func isTransientLockErr(err error) bool {
	if errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return true
	}
	return errors.Is(err, fs.ErrPermission)
}
