package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/metrics"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

// SleepFunc espera d o hasta que el contexto se cancele.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy reintenta solo ante rate limits/cuota, con backoff exponencial 2s, 4s, 8s...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
	Logger      *zap.Logger
}

func DefaultRetryPolicy(logger *zap.Logger) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Logger:      logger,
	}
}

// WithRetry ejecuta op. Cualquier error que no sea rate limit se propaga de inmediato.
// Si se agotan los intentos por rate limit el error envuelve domain.ErrRateLimited y la última causa.
func WithRetry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	delay := p.BaseDelay
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				p.Logger.Info("llm call succeeded after retry", zap.Int("attempt", attempt))
			}
			return result, nil
		}

		if !IsRateLimit(err) {
			return zero, err
		}
		if attempt >= p.MaxAttempts {
			p.Logger.Warn("rate limit retries exhausted", zap.Int("attempts", attempt), zap.Error(err))
			return zero, fmt.Errorf("%w after %d attempts: %w", domain.ErrRateLimited, attempt, err)
		}

		p.Logger.Warn("rate limit hit, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		metrics.RateLimitRetries.Inc()
		if err := p.Sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry backoff interrupted: %w", err)
		}
		delay *= 2
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
