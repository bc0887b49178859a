package ticker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodicallyStopsOnCancel(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	go func() {
		for runs.Load() < 3 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	err := Periodically(ctx, time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	assert.ErrorIs(err, context.Canceled)
	assert.GreaterOrEqual(runs.Load(), int32(3))
}

func TestPeriodicallyStopsOnError(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")
	err := Periodically(context.Background(), time.Millisecond, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(err, boom)
	assert.Contains(err.Error(), "periodic task failed")
}
