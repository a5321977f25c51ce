package infra

import (
	"time"
)

const (
	// Standard backoff constants
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// ReconnectDelay maps a consecutive failure count to the wait before the next dial.
type ReconnectDelay func(retryCount int) time.Duration

// CalculateBackoff returns the exponential backoff duration for a given retry count.
// Logic: baseDelay * 2^retryCount, capped at maxDelay.
// If retryCount is negative, it returns baseDelay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseDelay
	}

	// 2^30 seconds is already far above maxDelay.
	if retryCount > 30 {
		return maxDelay
	}

	backoff := baseDelay * time.Duration(1<<retryCount)
	if backoff > maxDelay {
		return maxDelay
	}

	return backoff
}

// FixedDelay waits d before every reconnect regardless of the retry count.
func FixedDelay(d time.Duration) ReconnectDelay {
	return func(int) time.Duration { return d }
}

// ReconnectPolicy returns the delay function selected by realtime.backoff.
func ReconnectPolicy(cfg *Config) ReconnectDelay {
	if cfg.Realtime.Backoff == BackoffExponential {
		return CalculateBackoff
	}
	return FixedDelay(time.Duration(cfg.Realtime.ReconnectDelayMS) * time.Millisecond)
}
