// Package startup retries boot steps that depend on upstream services
// (Jackett, Prowlarr, Trakt) being reachable yet.
package startup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig configures the exponential backoff retry behavior.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// DefaultRetryConfig returns the defaults used for plugin init at boot.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 5 * time.Second,
		MaxDelay:     2 * time.Minute,
		MaxAttempts:  3,
		Multiplier:   2.0,
	}
}

// Substrings that mark an error as transient connectivity trouble. Upstream
// errors often arrive stringified through plugin wrapping, so typed checks
// alone are not enough.
var transientIndicators = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"no route to host",
	"host is down",
	"network is unreachable",
	"dial tcp",
	"dial udp",
	"timeout",
	"i/o timeout",
	"temporary failure in name resolution",
}

// IsNetworkError reports whether err looks like the upstream being
// unreachable rather than a configuration or application problem.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	var dnsErr *net.DNSError
	if errors.As(err, &netErr) || errors.As(err, &dnsErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range transientIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// WithRetry runs a named boot step, retrying with exponential backoff while
// the failure looks network-related. Any other error aborts immediately so a
// bad config does not stall startup.
func WithRetry(ctx context.Context, step string, cfg RetryConfig, fn func() error, logger *zerolog.Logger) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("step", step).Int("attempt", attempt).Msg("boot step recovered")
			}
			return nil
		}
		lastErr = err

		if !IsNetworkError(err) {
			logger.Error().Err(err).Str("step", step).Msg("boot step failed, not retryable")
			return err
		}
		if attempt >= cfg.MaxAttempts {
			logger.Error().Err(lastErr).Str("step", step).Int("attempts", cfg.MaxAttempts).
				Msg("boot step still failing, giving up")
			return lastErr
		}

		logger.Warn().Err(err).Str("step", step).
			Int("attempt", attempt).Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("upstream unreachable, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
