package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and retry values.
// These values can be customized via environment variables.
type Timeouts struct {
	APIAttempts     int           // Total attempts per OVH API call
	ProbeTimeout    time.Duration // Timeout of a single SSH port probe
	PrepAttempts    int           // Total attempts per host for system preparation
	PrepDelay       time.Duration // Fixed delay between system preparation attempts
	SSHDialTimeout  time.Duration // Remote shell connect timeout
	Delete          time.Duration // Timeout for deleting all instances on cleanup
	DownloadTimeout time.Duration // Timeout for fetching the installer
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - OVHDCOS_API_ATTEMPTS (default: 3)
//   - OVHDCOS_PROBE_TIMEOUT (default: 2s)
//   - OVHDCOS_PREP_ATTEMPTS (default: 3)
//   - OVHDCOS_PREP_DELAY (default: 10s)
//   - OVHDCOS_SSH_DIAL_TIMEOUT (default: 10s)
//   - OVHDCOS_DELETE_TIMEOUT (default: 1m)
//   - OVHDCOS_DOWNLOAD_TIMEOUT (default: 30m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		APIAttempts:     parseInt("OVHDCOS_API_ATTEMPTS", 3),
		ProbeTimeout:    parseDuration("OVHDCOS_PROBE_TIMEOUT", 2*time.Second),
		PrepAttempts:    parseInt("OVHDCOS_PREP_ATTEMPTS", 3),
		PrepDelay:       parseDuration("OVHDCOS_PREP_DELAY", 10*time.Second),
		SSHDialTimeout:  parseDuration("OVHDCOS_SSH_DIAL_TIMEOUT", 10*time.Second),
		Delete:          parseDuration("OVHDCOS_DELETE_TIMEOUT", time.Minute),
		DownloadTimeout: parseDuration("OVHDCOS_DOWNLOAD_TIMEOUT", 30*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}
