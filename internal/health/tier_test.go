package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Tier
	}{
		{0, Unhealthy},
		{59, Unhealthy},
		{60, Degraded},
		{89, Degraded},
		{90, Healthy},
		{100, Healthy},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.score), "score %d", tc.score)
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(0, 100))
	assert.Equal(t, 0, Score(10, 0))
	assert.Equal(t, 100, Score(90, 90))
	assert.Equal(t, 67, Score(60, 90))
	assert.Equal(t, 33, Score(30, 90))
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "healthy", Healthy.String())
	assert.Equal(t, "degraded", Degraded.String())
	assert.Equal(t, "unhealthy", Unhealthy.String())
}

func TestParseMeminfo(t *testing.T) {
	usage, err := parseMeminfo(meminfoPlenty)
	assert.NoError(t, err)
	assert.Equal(t, int64(4000000), usage.TotalKB)
	assert.Equal(t, int64(2000000), usage.AvailableKB)

	_, err = parseMeminfo("MemTotal: 100 kB\n")
	assert.Error(t, err)
}

func TestParseDF(t *testing.T) {
	usage, err := parseDF(dfLow)
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, usage.FreePercent(), 0.01)

	_, err = parseDF("Filesystem 1024-blocks Used Available Capacity Mounted on\n")
	assert.Error(t, err)
}

func TestFirewallActive(t *testing.T) {
	assert.True(t, firewallActive("Status: active\n"))
	assert.False(t, firewallActive("Status: inactive\n"))
	assert.False(t, firewallActive(""))
}
