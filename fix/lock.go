package fix

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nightlyone/lockfile"
)

// ErrLocked is returned when another live process is fixing the same root.
var ErrLocked = errors.New("another errfix run holds the lock for this root")

// lockPath names the lock file for an absolute root.
func lockPath(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(os.TempDir(), fmt.Sprintf("errfix-%x.lock", sum[:4]))
}

// acquireLock takes the per-root run lock. The returned function releases it.
func acquireLock(root string) (func(), error) {
	lock, err := lockfile.New(lockPath(root))
	if err != nil {
		return nil, fmt.Errorf("error creating lock: %w", err)
	}

	err = lock.TryLock()
	if errors.Is(err, lockfile.ErrDeadOwner) || errors.Is(err, lockfile.ErrInvalidPid) {
		// stale lock from a process that died; the library removed it
		err = lock.TryLock()
	}
	switch {
	case err == nil:
		return func() { _ = lock.Unlock() }, nil
	case errors.Is(err, lockfile.ErrBusy):
		return nil, ErrLocked
	default:
		return nil, fmt.Errorf("error acquiring lock: %w", err)
	}
}
