package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/upstream"
)

// Config defines the backoff behavior for a call site. Delays double after
// every failed attempt: InitialDelay, 2*InitialDelay, 4*InitialDelay, ...
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultConfig matches the hosted-inference call sites: cold models answer
// 503 for a while, and five attempts starting at one second cover the usual
// warmup window.
var DefaultConfig = Config{
	MaxAttempts:  5,
	InitialDelay: time.Second,
}

// Logger is the subset of the application logger the retrier needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
}

// sleep is a variable so tests can record computed delays instead of waiting.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op up to cfg.MaxAttempts times, waiting between attempts with
// exponential backoff. Only transient upstream failures are retried; any
// other error is returned immediately. When every attempt fails the last
// transient error is returned wrapped, so callers can still inspect it.
func Do(ctx context.Context, cfg Config, log Logger, operation string, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !upstream.IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := cfg.InitialDelay * time.Duration(1<<uint(attempt))
		if log != nil {
			log.Info("retrying transient upstream failure",
				"operation", operation,
				"attempt", attempt+1,
				"max_attempts", cfg.MaxAttempts,
				"delay", delay.String(),
				"error", err.Error(),
			)
		}
		metrics.ProviderRetries.WithLabelValues(operation).Inc()

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: %d attempts exhausted: %w", operation, cfg.MaxAttempts, lastErr)
}
