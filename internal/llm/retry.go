package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds the rate-limit retry loop around Chat.
type RetryPolicy struct {
	// Attempts is the TOTAL number of calls made, not the number of
	// extra tries after the first. Attempts=1 performs exactly one call
	// and never sleeps.
	Attempts int

	// Delay is the fixed pause between rate-limited attempts. There is
	// no exponential growth and no jitter.
	Delay time.Duration

	// Sleep overrides the pause implementation; tests inject a no-op.
	// When nil, a context-aware sleep is used.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *slog.Logger
}

// ChatWithRetry calls provider.Chat up to policy.Attempts times.
//
// Only ErrRateLimited is retried; success and every other error return
// immediately. A single-attempt policy returns the rate-limit error
// as-is. When more than one attempt was allowed and all were rate
// limited, the returned error wraps ErrRetriesExhausted together with
// the last rate-limit error, so errors.Is matches both.
func ChatWithRetry(ctx context.Context, provider Provider, messages []Message, opts *ChatOptions, policy RetryPolicy) (*Response, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := policy.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := provider.Chat(ctx, messages, opts)
		if err == nil || !isRateLimited(err) {
			return resp, err
		}
		lastErr = err

		if attempt < attempts {
			logger.Warn("rate limit exceeded, backing off",
				"delay", policy.Delay,
				"attempt", attempt,
				"attempts", attempts)
			if err := sleep(ctx, policy.Delay); err != nil {
				return nil, err
			}
		}
	}

	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

func isRateLimited(err error) bool {
	return err != nil && errors.Is(err, ErrRateLimited)
}

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
