package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(failures, successes int, coolDown time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: failures,
		SuccessThreshold: successes,
		CoolDown:         coolDown,
		Now:              clock.Now,
	})
	return cb, clock
}

func TestCircuitBreaker_AllowInClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test"))

	if !cb.Allow() {
		t.Error("Expected Allow() to return true in CLOSED state")
	}
	if cb.State() != BreakerClosed {
		t.Errorf("Expected state CLOSED, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, 2, time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != BreakerClosed {
		t.Error("Should still be CLOSED after 2 failures")
	}

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Errorf("Expected OPEN after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("Expected Allow() to return false in OPEN state")
	}
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	cb, _ := newTestBreaker(3, 1, time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != BreakerClosed {
		t.Errorf("non-consecutive failures must not open the breaker, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenCycle(t *testing.T) {
	cb, clock := newTestBreaker(2, 2, 30*time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Fatal("Expected OPEN state")
	}

	clock.Advance(29 * time.Second)
	if cb.Allow() {
		t.Error("Allow() must stay false during the cool-down")
	}

	clock.Advance(time.Second)
	if !cb.Allow() {
		t.Fatal("Expected a trial call after the cool-down")
	}
	if cb.State() != BreakerHalfOpen {
		t.Errorf("Expected HALF_OPEN, got %s", cb.State())
	}

	// A failed trial call re-opens with a fresh cool-down.
	cb.RecordFailure()
	if cb.State() != BreakerOpen || cb.Allow() {
		t.Fatalf("failed trial call should re-open, got %s", cb.State())
	}

	clock.Advance(30 * time.Second)
	cb.Allow()
	cb.RecordSuccess()
	if cb.State() != BreakerHalfOpen {
		t.Error("Should still be HALF_OPEN after 1 success")
	}
	cb.RecordSuccess()
	if cb.State() != BreakerClosed {
		t.Errorf("Expected CLOSED after 2 successes, got %s", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(5, 2, time.Hour)

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	if cb.State() != BreakerOpen {
		t.Fatal("Expected OPEN state")
	}

	cb.Reset()
	if cb.State() != BreakerClosed {
		t.Errorf("Expected CLOSED after Reset, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("Expected Allow() to return true after Reset")
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb, _ := newTestBreaker(2, 1, time.Hour)
	boom := errors.New("boom")

	// Cancellation is not a backend failure
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return context.Canceled })
	}
	if cb.State() != BreakerClosed {
		t.Fatalf("cancellation must not open the breaker, got %s", cb.State())
	}

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Errorf("expected the call error, got %v", err)
		}
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while open")
	}
}
