package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	for _, env := range []string{
		"OVHDCOS_API_ATTEMPTS", "OVHDCOS_PROBE_TIMEOUT", "OVHDCOS_PREP_ATTEMPTS",
		"OVHDCOS_PREP_DELAY", "OVHDCOS_SSH_DIAL_TIMEOUT", "OVHDCOS_DELETE_TIMEOUT",
		"OVHDCOS_DOWNLOAD_TIMEOUT",
	} {
		t.Setenv(env, "")
	}

	timeouts := LoadTimeouts()

	assert.Equal(t, 3, timeouts.APIAttempts)
	assert.Equal(t, 2*time.Second, timeouts.ProbeTimeout)
	assert.Equal(t, 3, timeouts.PrepAttempts)
	assert.Equal(t, 10*time.Second, timeouts.PrepDelay)
	assert.Equal(t, 10*time.Second, timeouts.SSHDialTimeout)
	assert.Equal(t, time.Minute, timeouts.Delete)
	assert.Equal(t, 30*time.Minute, timeouts.DownloadTimeout)
}

func TestLoadTimeouts_FromEnv(t *testing.T) {
	t.Setenv("OVHDCOS_API_ATTEMPTS", "5")
	t.Setenv("OVHDCOS_PREP_DELAY", "250ms")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5, timeouts.APIAttempts)
	assert.Equal(t, 250*time.Millisecond, timeouts.PrepDelay)
}

func TestLoadTimeouts_InvalidFallsBack(t *testing.T) {
	t.Setenv("OVHDCOS_API_ATTEMPTS", "zero")
	t.Setenv("OVHDCOS_PREP_ATTEMPTS", "0")
	t.Setenv("OVHDCOS_PROBE_TIMEOUT", "soon")

	timeouts := LoadTimeouts()

	assert.Equal(t, 3, timeouts.APIAttempts)
	assert.Equal(t, 3, timeouts.PrepAttempts)
	assert.Equal(t, 2*time.Second, timeouts.ProbeTimeout)
}
