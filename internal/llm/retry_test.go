package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"persona-llm/internal/domain"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func rateLimitErr() error {
	return &APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"}
}

func TestWithRetry_SucceedsAfterTwoRateLimits(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := RetryPolicy{Sleep: sleeper.sleep}

	calls := 0
	got, err := WithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", rateLimitErr()
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d: expected %v, got %v", i, want[i], sleeper.delays[i])
		}
	}
}

func TestWithRetry_ExhaustedReturnsRateLimited(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := RetryPolicy{Sleep: sleeper.sleep}

	calls := 0
	_, err := WithRetry(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, rateLimitErr()
	})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected cause to stay in chain, got %v", err)
	}
	if calls != DefaultMaxAttempts {
		t.Fatalf("expected %d calls, got %d", DefaultMaxAttempts, calls)
	}
	if len(sleeper.delays) != DefaultMaxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %v", DefaultMaxAttempts-1, sleeper.delays)
	}
}

func TestWithRetry_NonRateLimitNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := RetryPolicy{Sleep: sleeper.sleep}
	boom := errors.New("invalid api key")

	calls := 0
	_, err := WithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("non rate-limit error must not be reported as rate limited")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Fatalf("expected no sleeps, got %v", sleeper.delays)
	}
}

func TestWithRetry_MalformedNotRetried(t *testing.T) {
	policy := RetryPolicy{Sleep: (&recordingSleeper{}).sleep}

	calls := 0
	_, err := WithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "", domain.ErrMalformedGenerationResult
	})
	if !errors.Is(err, domain.ErrMalformedGenerationResult) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestWithRetry_CustomAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond, Sleep: sleeper.sleep}

	_, err := WithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		return "", errors.New("HTTP 429 too many requests")
	})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d: expected %v, got %v", i, want[i], sleeper.delays[i])
		}
	}
}

func TestWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{BaseDelay: time.Hour}

	calls := 0
	_, err := WithRetry(ctx, policy, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", rateLimitErr()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before cancel, got %d", calls)
	}
}
