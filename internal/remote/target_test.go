package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conn-castle/agent-deploy/internal/config"
)

func TestTargetFromSnapshot(t *testing.T) {
	snap := config.NewSnapshot(map[string]string{
		config.KeyTargetHost: "10.0.0.5",
		config.KeyTargetUser: "ops",
		config.KeySSHPort:    "2222",
		config.KeySSHKeyPath: "/keys/id",
	})
	target := TargetFromSnapshot(snap)
	assert.Equal(t, Target{Address: "10.0.0.5", User: "ops", Port: 2222, IdentityFile: "/keys/id"}, target)
	assert.True(t, target.Valid())
	assert.Equal(t, "ops@10.0.0.5", target.Destination())
	assert.Equal(t, "ops@10.0.0.5:2222", target.String())
}

func TestTargetFromSnapshot_PlaceholderIsInvalid(t *testing.T) {
	snap := config.NewSnapshot(map[string]string{
		config.KeyTargetHost: "your-server-ip",
		config.KeyTargetUser: "your-ssh-user",
	})
	target := TargetFromSnapshot(snap)
	assert.False(t, target.Valid())
	assert.Equal(t, DefaultSSHPort, target.Port)
	assert.Empty(t, target.User)
}

func TestTargetValid(t *testing.T) {
	assert.False(t, Target{}.Valid())
	assert.False(t, Target{Address: "your-server-ip"}.Valid())
	assert.True(t, Target{Address: "host.example"}.Valid())
	assert.Equal(t, "host.example", Target{Address: "host.example", Port: 22}.String())
}
