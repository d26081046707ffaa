package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/envfile"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/templates"
)

const storeTemplateName = "deploy.env"

// ErrStoreInit reports that a missing store could not be created from the template.
// Callers may log a warning and continue with an empty store.
var ErrStoreInit = errors.New("store initialization failed")

// Store is the persistent KEY="VALUE" configuration for one deployment workspace.
// A Store assumes a single writer per path; use Lock to enforce that across processes.
type Store struct {
	path     string
	lockPath string
	sys      System
	template func() ([]byte, error)
}

// NewStore returns a store bound to path using the OS filesystem.
func NewStore(path string) *Store {
	return NewStoreWithSystem(path, RealSystem{})
}

// NewStoreWithSystem returns a store bound to path using sys for file access.
func NewStoreWithSystem(path string, sys System) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
		sys:      sys,
		template: func() ([]byte, error) { return templates.Read(storeTemplateName) },
	}
}

// WithTemplate overrides the template source used by Ensure.
// A nil source means no template is available.
func (s *Store) WithTemplate(source func() ([]byte, error)) *Store {
	s.template = source
	return s
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Ensure creates the store from the template when it does not exist yet.
func (s *Store) Ensure() error {
	if _, err := s.sys.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.StoreStatFailedFmt, s.path, err)
	}
	if s.template == nil {
		return fmt.Errorf(messages.StoreNoTemplateFmt, ErrStoreInit, s.path)
	}
	data, err := s.template()
	if err != nil {
		return fmt.Errorf(messages.StoreTemplateReadFailedFmt, ErrStoreInit, err)
	}
	if err := s.sys.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf(messages.StoreCreateDirFailedFmt, ErrStoreInit, filepath.Dir(s.path), err)
	}
	if err := s.sys.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf(messages.StoreWriteFailedFmt, s.path, err)
	}
	return nil
}

// Get returns the stored value for key, or def when the key is absent, empty,
// or the store cannot be read.
func (s *Store) Get(key string, def string) string {
	data, err := s.sys.ReadFile(s.path)
	if err != nil {
		return def
	}
	value := envfile.ParseLenient(string(data))[key]
	if value == "" {
		return def
	}
	return value
}

// Set upserts key=value. A live assignment is replaced in place; an absent or
// commented-out key is appended.
func (s *Store) Set(key string, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// SetMany upserts every pair in updates with a single write.
func (s *Store) SetMany(updates map[string]string) error {
	before, after, err := s.Preview(updates)
	if err != nil {
		return err
	}
	if before == after {
		return nil
	}
	if err := s.sys.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf(messages.StoreWriteFailedFmt, s.path, err)
	}
	if err := s.sys.WriteFileAtomic(s.path, []byte(after), 0o600); err != nil {
		return fmt.Errorf(messages.StoreWriteFailedFmt, s.path, err)
	}
	return nil
}

// Preview returns the current store content and the content SetMany(updates) would write.
func (s *Store) Preview(updates map[string]string) (string, string, error) {
	for key := range updates {
		if err := validateKey(key); err != nil {
			return "", "", err
		}
	}
	current, err := s.read()
	if err != nil {
		return "", "", err
	}
	return current, envfile.Patch(current, updates), nil
}

// ValidateRequired checks every requirement against the current store content.
// A requirement fails when its value is empty or equals its placeholder sentinel.
// Returns the aggregate result and the failing keys in requirement order.
func (s *Store) ValidateRequired(reqs []RequiredVariable) (bool, []string) {
	snap, err := s.Snapshot()
	if err != nil {
		snap = Snapshot{}
	}
	return snap.ValidateRequired(reqs)
}

// Snapshot reads the store into an immutable snapshot.
// A missing store yields an empty snapshot.
func (s *Store) Snapshot() (Snapshot, error) {
	current, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	entries, err := envfile.Entries(current)
	if err != nil {
		return Snapshot{}, fmt.Errorf(messages.StoreInvalidFmt, s.path, err)
	}
	return newSnapshot(entries), nil
}

// read returns the raw store content; a missing store reads as empty.
func (s *Store) read() (string, error) {
	data, err := s.sys.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(messages.StoreReadFailedFmt, s.path, err)
	}
	return string(data), nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf(messages.StoreKeyRequired)
	}
	if strings.ContainsAny(key, "= \t\r\n#\"'") {
		return fmt.Errorf(messages.StoreKeyInvalidFmt, key)
	}
	return nil
}
