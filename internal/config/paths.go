package config

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// StateDirName is the per-workspace directory holding the store and settings.
const StateDirName = ".agent-deploy"

// Paths holds resolved paths for the store, its lock, and the settings file.
type Paths struct {
	Root         string
	StorePath    string
	LockPath     string
	SettingsPath string
}

// DefaultPaths returns the default paths for a workspace root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:         root,
		StorePath:    filepath.Join(root, StateDirName, "deploy.env"),
		LockPath:     filepath.Join(root, StateDirName, "deploy.env.lock"),
		SettingsPath: filepath.Join(root, StateDirName, "deploy.toml"),
	}
}

// ExpandPath resolves a leading ~ to the operator's home directory.
// Paths that cannot be expanded are returned unchanged.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
