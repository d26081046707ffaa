package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestLock_AcquireAndRelease(t *testing.T) {
	store := newTestStore(t)
	unlock, err := store.Lock()
	require.NoError(t, err)
	require.NoError(t, unlock())

	unlock, err = store.Lock()
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestLock_TimesOutWhenHeld(t *testing.T) {
	origTimeout, origSleep := lockWaitTimeout, lockSleep
	lockWaitTimeout = -time.Second
	lockSleep = func(time.Duration) {}
	t.Cleanup(func() {
		lockWaitTimeout = origTimeout
		lockSleep = origSleep
	})

	store := newTestStore(t)
	unlock, err := store.Lock()
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	// flock locks are per open file description, so a second open in the same
	// process contends with the first.
	_, err = store.Lock()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreLocked))
}

func TestLock_UnexpectedFlockError(t *testing.T) {
	origFlock := flockFn
	flockFn = func(int, int) error { return unix.EBADF }
	t.Cleanup(func() { flockFn = origFlock })

	store := newTestStore(t)
	_, err := store.Lock()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStoreLocked))
}

func TestFileLockRelease_Nil(t *testing.T) {
	var lock *fileLock
	assert.NoError(t, lock.release())
}
