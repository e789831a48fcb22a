package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for RetryWithBackoff.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryConfig mirrors the historical chart download behaviour:
// three attempts with a doubling delay between them.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 2 * time.Second,
	Multiplier:   2.0,
}

// RetryWithBackoff executes operation up to cfg.Attempts times, waiting
// cfg.InitialDelay between the first two attempts and multiplying the
// delay by cfg.Multiplier after each failure. Context cancellation is
// honored between attempts. The last error is returned when every
// attempt fails.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, operation func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := operation(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == cfg.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("canceled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * cfg.Multiplier)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, lastErr)
}
