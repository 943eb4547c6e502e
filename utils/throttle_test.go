package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottleWaitsFixedDelay(t *testing.T) {
	delay := 50 * time.Millisecond
	th := NewThrottle(delay)

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("elapsed %v < minimum %v", elapsed, 2*delay)
	}
}

func TestThrottleZeroDelay(t *testing.T) {
	th := NewThrottle(0)
	called := false
	th.sleep = func(context.Context, time.Duration) error {
		called = true
		return nil
	}
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if called {
		t.Error("zero delay should not sleep")
	}
}

func TestThrottleCancelled(t *testing.T) {
	th := NewThrottle(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait on cancelled ctx: got %v, want context.Canceled", err)
	}
}
