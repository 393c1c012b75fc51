package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls backoff for rate-limited calls. The delay before
// attempt n is BaseDelay * 2^n plus up to JitterFraction of that value.
type RetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	JitterFraction float64
}

// DefaultRetryConfig returns the standard retry policy: 3 attempts,
// 1s base delay, 30% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		JitterFraction: 0.3,
	}
}

type retryClient struct {
	inner  Client
	cfg    RetryConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a client with exponential backoff on rate-limit errors.
// Other error kinds pass through untouched.
func WithRetry(inner Client, cfg RetryConfig) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retryClient{
		inner:  inner,
		cfg:    cfg,
		logger: slog.Default().WithGroup("llm.retry"),
		sleep:  sleepCtx,
	}
}

func (r *retryClient) CreateMessage(ctx context.Context, req *Request) (*Message, error) {
	var lastErr error
	for attempt := range r.cfg.MaxAttempts {
		msg, err := r.inner.CreateMessage(ctx, req)
		if err == nil {
			return msg, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err

		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		delay := r.backoff(attempt)
		r.logger.Warn("rate limited, backing off",
			"attempt", attempt+1,
			"max_attempts", r.cfg.MaxAttempts,
			"delay", delay)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("rate limit persisted after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

func (r *retryClient) backoff(attempt int) time.Duration {
	base := r.cfg.BaseDelay * time.Duration(1<<attempt)
	jitter := time.Duration(rand.Float64() * r.cfg.JitterFraction * float64(base))
	return base + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
