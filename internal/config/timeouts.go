package config

import (
	"os"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ResetTimeout       time.Duration // Budget for the environment reset loop
	ResetRetryInterval time.Duration // Wait after a failed reset attempt
	DrainTimeout       time.Duration // Budget for waiting until no services remain
	DrainInterval      time.Duration // Wait between service drain polls
	TerminateDelay     time.Duration // Delay before machines are terminated on reset
	ActionWait         string        // Wait window passed to action fetch
	CommandTimeout     string        // Timeout wrapper for tool commands; empty disables it
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - BUNDLETESTER_RESET_TIMEOUT (default: 60s)
//   - BUNDLETESTER_RESET_RETRY_INTERVAL (default: 1s)
//   - BUNDLETESTER_DRAIN_TIMEOUT (default: 60s)
//   - BUNDLETESTER_DRAIN_INTERVAL (default: 4s)
//   - BUNDLETESTER_TERMINATE_DELAY (default: 60s)
//   - BUNDLETESTER_ACTION_WAIT (default: 1m)
//   - BUNDLETESTER_COMMAND_TIMEOUT (default: unset)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ResetTimeout:       parseDuration("BUNDLETESTER_RESET_TIMEOUT", 60*time.Second),
		ResetRetryInterval: parseDuration("BUNDLETESTER_RESET_RETRY_INTERVAL", 1*time.Second),
		DrainTimeout:       parseDuration("BUNDLETESTER_DRAIN_TIMEOUT", 60*time.Second),
		DrainInterval:      parseDuration("BUNDLETESTER_DRAIN_INTERVAL", 4*time.Second),
		TerminateDelay:     parseDuration("BUNDLETESTER_TERMINATE_DELAY", 60*time.Second),
		ActionWait:         parseWait("BUNDLETESTER_ACTION_WAIT", "1m"),
		CommandTimeout:     parseWait("BUNDLETESTER_COMMAND_TIMEOUT", ""),
	}
}

// DefaultTimeouts returns the timeouts used when no overrides are set.
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		ResetTimeout:       60 * time.Second,
		ResetRetryInterval: 1 * time.Second,
		DrainTimeout:       60 * time.Second,
		DrainInterval:      4 * time.Second,
		TerminateDelay:     60 * time.Second,
		ActionWait:         "1m",
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

// parseWait reads a wait window that is handed verbatim to an external tool.
// Values must still parse as Go durations so that typos are caught here
// instead of by the tool.
func parseWait(envVar, defaultVal string) string {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err != nil || d <= 0 {
		return defaultVal
	}
	return val
}
