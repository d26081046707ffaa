package collaborators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conn-castle/agent-deploy/internal/config"
)

func TestBuildEnv(t *testing.T) {
	snap := config.NewSnapshot(map[string]string{
		config.KeyTargetHost:   "10.0.0.5",
		config.KeyTargetUser:   "ops",
		config.KeyAgentToken:   "your-agent-token",
		config.KeySSHKeyPath:   "",
		config.KeyGCPRegion:    "your-region",
		config.KeyAgentAccount: "svc",
	})
	base := []string{"PATH=/bin", "TARGET_USER=inherited"}

	env := BuildEnv(base, snap, "ops@10.0.0.5")

	host, ok := GetEnv(env, config.KeyTargetHost)
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.5", host)
	user, _ := GetEnv(env, config.KeyTargetUser)
	assert.Equal(t, "ops", user)
	account, _ := GetEnv(env, config.KeyAgentAccount)
	assert.Equal(t, "svc", account)
	target, _ := GetEnv(env, "AGD_TARGET")
	assert.Equal(t, "ops@10.0.0.5", target)

	for _, key := range []string{config.KeyAgentToken, config.KeySSHKeyPath, config.KeyGCPRegion} {
		_, ok := GetEnv(env, key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, "TARGET_USER=inherited", base[1], "base must not be modified")
}

func TestSetUnsetEnv(t *testing.T) {
	env := SetEnv([]string{"A=1"}, "A", "2")
	assert.Equal(t, []string{"A=2"}, env)
	env = SetEnv(env, "B", "3")
	assert.Equal(t, []string{"A=2", "B=3"}, env)
	assert.Equal(t, []string{"B=3"}, UnsetEnv(env, "A"))
	assert.Equal(t, env, UnsetEnv(env, ""))

	_, ok := GetEnv(env, "C")
	assert.False(t, ok)
}

func TestBuildEnvClearsInheritedTarget(t *testing.T) {
	env := BuildEnv([]string{"AGD_TARGET=stale", "PATH=/bin"}, config.NewSnapshot(nil), "")
	_, ok := GetEnv(env, "AGD_TARGET")
	assert.False(t, ok)
	assert.Contains(t, env, "PATH=/bin")
}
