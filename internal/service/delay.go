package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/unclebandit/donorlink-backend/internal/config"
)

// Delayer picks the pause between two consecutive sends.
type Delayer interface {
	Next() time.Duration
}

type FixedDelay time.Duration

func (d FixedDelay) Next() time.Duration {
	return time.Duration(d)
}

// RandomDelay draws uniformly from [Min, Max].
type RandomDelay struct {
	Min time.Duration
	Max time.Duration
}

func (d RandomDelay) Next() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

// NewDelayer returns a RandomDelay when both bounds are configured and a
// FixedDelay otherwise.
func NewDelayer(cfg config.Outreach) Delayer {
	if cfg.Randomized() {
		return RandomDelay{Min: cfg.MinDelay, Max: cfg.MaxDelay}
	}
	return FixedDelay(cfg.Delay)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the timer-backed SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
