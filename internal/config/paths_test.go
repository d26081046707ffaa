package config

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	root := filepath.Join("work", "space")
	paths := DefaultPaths(root)
	assert.Equal(t, root, paths.Root)
	assert.Equal(t, filepath.Join(root, ".agent-deploy", "deploy.env"), paths.StorePath)
	assert.Equal(t, filepath.Join(root, ".agent-deploy", "deploy.env.lock"), paths.LockPath)
	assert.Equal(t, filepath.Join(root, ".agent-deploy", "deploy.toml"), paths.SettingsPath)
}

func TestExpandPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh", "id_ed25519"), ExpandPath("~/.ssh/id_ed25519"))
	assert.Equal(t, "/abs/key", ExpandPath("/abs/key"))
	assert.Equal(t, "", ExpandPath(""))
}
