package dynamodb

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig defines how unprocessed batch-get keys are retried
type RetryConfig struct {
	MaxAttempts   int           // Maximum number of retry requests per chunk
	BaseDelay     time.Duration // Delay before the first retry
	MaxDelay      time.Duration // Cap for any single delay
	BackoffFactor float64       // Exponential backoff multiplier
	JitterFactor  float64       // Jitter factor to prevent thundering herd
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   8,
		BaseDelay:     50 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// calculateDelay calculates the delay for the given attempt number. The
// backoff is clamped while still a float so large attempts cannot overflow
// time.Duration.
func (c RetryConfig) calculateDelay(attempt int) time.Duration {
	limit := float64(c.MaxDelay)
	backoff := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if math.IsNaN(backoff) || backoff >= limit {
		return c.MaxDelay
	}

	jitter := backoff * c.JitterFactor * (rand.Float64() - 0.5) * 2
	delay := math.Min(backoff+jitter, limit)
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
