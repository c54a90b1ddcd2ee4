package filelock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedLocksCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.lock")

	u1, err := LockShared(path)
	require.NoError(t, err)
	u2, err := LockShared(path)
	require.NoError(t, err)

	require.NoError(t, u1())
	require.NoError(t, u2())
}

func TestExclusiveWaitsForShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.lock")

	unlockShared, err := LockShared(path)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlock, err := Lock(path)
		if err == nil {
			close(acquired)
			_ = unlock()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("exclusive lock acquired while shared lock held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, unlockShared())

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("exclusive lock not acquired after release")
	}
	assert.FileExists(t, path)
}
