package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/donorlink-backend/internal/config"
)

func TestFixedDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, FixedDelay(2*time.Second).Next())
}

func TestRandomDelayStaysInBounds(t *testing.T) {
	d := RandomDelay{Min: 8 * time.Second, Max: 15 * time.Second}
	for i := 0; i < 1000; i++ {
		got := d.Next()
		assert.GreaterOrEqual(t, got, 8*time.Second)
		assert.LessOrEqual(t, got, 15*time.Second)
	}

	assert.Equal(t, 3*time.Second, RandomDelay{Min: 3 * time.Second, Max: 3 * time.Second}.Next())
}

func TestNewDelayer(t *testing.T) {
	fixed := NewDelayer(config.Outreach{Delay: 2 * time.Second})
	assert.Equal(t, FixedDelay(2*time.Second), fixed)

	random := NewDelayer(config.Outreach{Delay: 2 * time.Second, MinDelay: 8 * time.Second, MaxDelay: 15 * time.Second})
	assert.Equal(t, RandomDelay{Min: 8 * time.Second, Max: 15 * time.Second}, random)
}

func TestSleepIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepWaits(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
