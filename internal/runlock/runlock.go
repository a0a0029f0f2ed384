package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"photoorg/internal/services"
)

// Lock is a held per-target run lock.
type Lock struct {
	path   string
	target string
	lock   *flock.Flock
}

// PathFor returns the lock file used for target inside lockDir.
func PathFor(lockDir, target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve target: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, "target-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// Acquire takes the lock for target without blocking. A lock held by another
// run returns an error matching services.ErrLocked.
func Acquire(lockDir, target string) (*Lock, error) {
	path, err := PathFor(lockDir, target)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "resolve lock path", target, err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "create lock dir", lockDir, err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "runlock", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(
			services.ErrLocked,
			"runlock",
			"acquire lock",
			fmt.Sprintf("another photoorg run is writing to %s", target),
			nil,
		)
	}
	return &Lock{path: path, target: target, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Target returns the target directory this lock guards.
func (l *Lock) Target() string {
	return l.target
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
