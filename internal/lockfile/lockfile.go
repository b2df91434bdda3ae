// Package lockfile provides a single-process mutual-exclusion lock backed
// by flock(2), serializing concurrent librepo-probe fetch/cache-write
// runs against the same cache directory.
//
// The API and acquisition sequence (open-or-create, then flock, clean up
// the lock file on release) is grounded on the teacher's Run function in
// internal/mirror/control.go; golang.org/x/sys/unix.Flock is the same
// syscall the teacher's own go.mod already pulled in as a transitive
// dependency of its build, promoted here to do real work instead of
// riding along unused.
package lockfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Flock wraps an open file descriptor with non-blocking flock(2)
// acquire/release.
type Flock struct {
	f *os.File
}

// Lock acquires an exclusive, non-blocking lock on the underlying file.
// It returns an error immediately if another process already holds it,
// rather than waiting.
func (fl Flock) Lock() error {
	return unix.Flock(int(fl.f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// Unlock releases the lock.
func (fl Flock) Unlock() error {
	return unix.Flock(int(fl.f.Fd()), unix.LOCK_UN)
}

// validatePath prevents a caller-supplied directory from placing the lock
// file outside the intended cache directory via "..".
func validatePath(lockPath, baseDir string) error {
	if strings.Contains(lockPath, "..") {
		return errors.Newf("unsafe lock file path (contains directory traversal): %s", lockPath)
	}
	cleanLock := filepath.Clean(lockPath)
	cleanBase := filepath.Clean(baseDir)
	if !strings.HasPrefix(cleanLock, cleanBase) {
		return errors.Newf("lock file path outside of base directory: %s", lockPath)
	}
	return nil
}

const lockFilename = ".librepo-probe.lock"

// Acquire opens (creating if necessary) the lock file in dir and takes an
// exclusive flock on it. The returned release function unlocks, closes,
// and removes the lock file; callers should defer it.
func Acquire(dir string) (release func(), err error) {
	lockPath := filepath.Join(dir, lockFilename)
	if err := validatePath(lockPath, dir); err != nil {
		return nil, errors.Wrap(err, "lockfile.Acquire")
	}

	file, err := os.Open(lockPath) //nolint:gosec // path validated above
	switch {
	case os.IsNotExist(err):
		file, err = os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "creating lock file")
		}
	case err != nil:
		return nil, errors.Wrap(err, "opening lock file")
	}

	fl := Flock{file}
	if err := fl.Lock(); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "acquiring flock")
	}

	release = func() {
		if err := fl.Unlock(); err != nil {
			slog.Warn("failed to unlock lock file", "error", err)
		}
		if err := file.Close(); err != nil {
			slog.Warn("failed to close lock file", "error", err)
		}
		if err := os.Remove(lockPath); err != nil {
			slog.Warn("failed to remove lock file", "error", err)
		}
	}
	return release, nil
}
