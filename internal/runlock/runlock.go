// Package runlock enforces the single-invocation assumption of the patch
// pass: the acquisition directory is mutated in place with no coordination,
// so two concurrent invocations would race on renames and deletes. An
// advisory flock on a hidden file inside the directory keeps them out.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the hidden lock file created inside the acquisition
// directory; the patch pass skips it during its file walk.
const LockFileName = ".bidspatch.lock"

// Lock holds an exclusive advisory lock on an acquisition directory.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the directory lock without blocking. A held lock yields an
// error naming the lock file so the operator can find the other invocation.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquisition directory is locked by another invocation (%s)", path)
	}
	return &Lock{flock: fl, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock and removes the lock file. Removal is best-effort;
// a stale empty lock file does not block future invocations.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}
