package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxRetries bounds the startup connection attempts.
const DefaultMaxRetries = 3

// ConnectOptions tunes the startup retry loop.
type ConnectOptions struct {
	MaxRetries int
	// Sleep is injectable for tests; defaults to time.Sleep.
	Sleep  func(time.Duration)
	Logger *zap.Logger
}

// Connect opens a store and verifies it with a cheap read probe,
// retrying with exponential backoff (2^attempt seconds). The process
// cannot start without its datastore, so exhausting the retries is a
// fatal initialization error. Mid-session query failures are never
// retried here.
func Connect(ctx context.Context, open func() (Store, error), opts ConnectOptions) (Store, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		s, err := open()
		if err == nil {
			if err = s.Probe(ctx); err == nil {
				return s, nil
			}
			s.Close()
		}
		lastErr = err

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		opts.Logger.Warn("store connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", opts.MaxRetries),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		opts.Sleep(backoff)
	}

	return nil, fmt.Errorf("store unavailable after %d attempts: %w", opts.MaxRetries, lastErr)
}
