// Package filelock provides advisory file locking so the CLI and a running
// TUI never interleave reads and writes of the same task store.
package filelock

import "os"

const lockFileMode = 0o600

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Only one process can hold the lock at a time; other callers block
// until the lock is available.
func Lock(path string) (unlock func() error, err error) {
	return acquire(path, true)
}

// LockShared acquires a shared advisory lock on the file at path. Any number
// of readers may hold it at once; an exclusive Lock waits for all of them.
func LockShared(path string) (unlock func() error, err error) {
	return acquire(path, false)
}

func acquire(path string, exclusive bool) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted data dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f, exclusive); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
