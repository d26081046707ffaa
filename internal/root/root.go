// Package root locates the workspace that owns an .agent-deploy state directory.
package root

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/messages"
)

// FindStateRoot walks up from start and returns the first directory holding
// an .agent-deploy directory. found is false when none exists up to the
// filesystem root.
func FindStateRoot(start string) (string, bool, error) {
	if start == "" {
		return "", false, errors.New(messages.RootStartRequired)
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, config.StateDirName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return dir, true, nil
		case err == nil:
			return "", false, fmt.Errorf(messages.RootPathNotDirFmt, candidate)
		case !errors.Is(err, os.ErrNotExist):
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindWorkspaceRoot returns the directory new state should live in: an
// existing state root, else the enclosing git checkout, else start itself.
func FindWorkspaceRoot(start string) (string, error) {
	if start == "" {
		return "", errors.New(messages.RootStartRequired)
	}
	found, ok, err := FindStateRoot(start)
	if err != nil {
		return "", err
	}
	if ok {
		return found, nil
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for probe := dir; ; {
		gitPath := filepath.Join(probe, ".git")
		info, err := os.Stat(gitPath)
		if err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return probe, nil
			}
			return "", fmt.Errorf(messages.RootPathNotDirOrFileFmt, gitPath)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return dir, nil
		}
		probe = parent
	}
}
