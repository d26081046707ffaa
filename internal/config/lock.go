package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// ErrStoreLocked reports that another process holds the store lock.
var ErrStoreLocked = errors.New("store is locked by another agd process")

type fileLock struct {
	file *os.File
}

var flockFn = unix.Flock
var lockSleep = time.Sleep

var (
	lockWaitTimeout = 2 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// Lock acquires an exclusive advisory lock on the store's lock file.
// The returned function releases the lock.
func (s *Store) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf(messages.StoreOpenLockFmt, s.lockPath, err)
	}
	lock, err := acquireFileLock(s.lockPath)
	if err != nil {
		return nil, err
	}
	return lock.release, nil
}

// acquireFileLock opens or creates path and acquires an exclusive lock.
func acquireFileLock(path string) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.StoreOpenLockFmt, path, err)
	}
	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileLock{file: file}, nil
}

// release unlocks and closes the file lock.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// lockFile polls for an exclusive advisory lock until lockWaitTimeout elapses.
func lockFile(file *os.File) error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return fmt.Errorf(messages.StoreLockFmt, file.Name(), err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.StoreLockTimeoutFmt, ErrStoreLocked, file.Name(), lockWaitTimeout)
		}
		lockSleep(lockPollEvery)
	}
}
