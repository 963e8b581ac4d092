package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int

	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("unexpected OnRetry attempts %v", retried)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := Retry(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return boom
	})

	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) || !errors.Is(err, boom) {
		t.Errorf("expected joined errors, got %v", err)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	bad := errors.New("auth failed")

	err := Retry(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if !errors.Is(err, bad) || !IsPermanentError(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastConfig(3), func(ctx context.Context) error {
		calls++
		return nil
	})

	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("expected nil")
	}
}

func TestBackoff(t *testing.T) {
	cfg := &Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, cfg); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	cfg := &Config{InitialDelay: 100 * time.Millisecond, Multiplier: 2, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := Backoff(0, cfg)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("jittered delay %v out of bounds", d)
		}
	}
}

func TestBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string

	b := NewBreaker(&BreakerConfig{
		MaxErrors:        2,
		ResetTimeout:     time.Minute,
		SuccessThreshold: 1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})
	b.now = func() time.Time { return now }

	fail := errors.New("relay down")
	b.Do(func() error { return fail })
	if b.State() != CircuitClosed {
		t.Fatal("expected breaker to stay closed after one failure")
	}
	b.Do(func() error { return fail })
	if b.State() != CircuitOpen {
		t.Fatal("expected breaker to open")
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }); !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("expected open breaker to refuse calls, err=%v called=%v", err, called)
	}

	now = now.Add(2 * time.Minute)
	if err := b.Do(func() error { return nil }); err != nil {
		t.Errorf("expected trial call to pass, got %v", err)
	}
	if b.State() != CircuitClosed {
		t.Errorf("expected breaker to close, got %s", b.State())
	}

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(&BreakerConfig{MaxErrors: 1, ResetTimeout: time.Second, SuccessThreshold: 1})
	b.now = func() time.Time { return now }

	b.Record(errors.New("x"))
	now = now.Add(2 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open allow, got %v", err)
	}
	b.Record(errors.New("still down"))

	if b.State() != CircuitOpen {
		t.Errorf("expected reopen, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected refusal right after reopening, got %v", err)
	}
}

func TestBreaker_SuccessResetsErrorCount(t *testing.T) {
	b := NewBreaker(&BreakerConfig{MaxErrors: 2, ResetTimeout: time.Minute, SuccessThreshold: 1})

	b.Record(errors.New("a"))
	b.Record(nil)
	b.Record(errors.New("b"))

	if b.State() != CircuitClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
}
