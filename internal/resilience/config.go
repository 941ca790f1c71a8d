package resilience

import (
	"time"
)

// FromRetryConfig converts config values to a RetryConfig. Zero values keep
// the single-attempt default.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return cfg
}

// FromCircuitConfig converts config values to a CircuitBreakerConfig. It
// reports false when failureThreshold is zero, meaning breakers are disabled.
func FromCircuitConfig(failureThreshold, resetTimeoutSecs int) (CircuitBreakerConfig, bool) {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold <= 0 {
		return cfg, false
	}
	cfg.FailureThreshold = failureThreshold
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg, true
}
