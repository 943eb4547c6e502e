package utils

import (
	"context"
	"time"
)

// Throttle is the fixed politeness pause between sequential page requests.
// It is not a rate limiter: every call waits the full delay.
type Throttle struct {
	delay time.Duration
	sleep func(context.Context, time.Duration) error
}

// NewThrottle creates a Throttle that pauses for delay. A zero delay never blocks.
func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{delay: delay, sleep: sleepCtx}
}

// Delay reports the configured pause.
func (t *Throttle) Delay() time.Duration {
	return t.delay
}

// Wait pauses for the configured delay or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.delay <= 0 {
		return ctx.Err()
	}
	return t.sleep(ctx, t.delay)
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
