package windowstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityWindowEviction(t *testing.T) {
	assert := assert.New(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 7 * time.Second

	var w ActivityWindow
	for _, off := range []int{0, 2, 4, 6} {
		w.Push(base.Add(time.Duration(off) * time.Second))
	}
	assert.Equal(4, w.Len())

	// exactly window old is retained
	w.EvictOlderThan(base.Add(7*time.Second), window)
	assert.Equal(4, w.Len())

	w.EvictOlderThan(base.Add(10*time.Second), window)
	assert.Equal(2, w.Len())
	ts := w.Timestamps()
	assert.Equal(base.Add(4*time.Second), ts[0])
	assert.Equal(base.Add(6*time.Second), ts[1])

	// returned slice is a copy
	ts[0] = base
	assert.Equal(base.Add(4*time.Second), w.Timestamps()[0])

	w.EvictOlderThan(base.Add(time.Hour), window)
	assert.Equal(0, w.Len())

	w.Push(base)
	w.Clear()
	assert.Equal(0, w.Len())
}

func TestMemWindowStoreRecord(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ws := NewMemWindowStore(7*time.Second, 0)

	fixtures := []struct {
		offset time.Duration
		size   int
	}{
		{0, 1},
		{1 * time.Second, 2},
		{2 * time.Second, 3},
		{7 * time.Second, 4},
		{8 * time.Second, 4},
		{9500 * time.Millisecond, 3},
		{30 * time.Second, 1},
	}
	for _, fix := range fixtures {
		now := base.Add(fix.offset)
		size, err := ws.Record(ctx, "111", now)
		assert.NoError(err)
		assert.Equal(fix.size, size, fix.offset)
		// after every record, all retained entries are within the window
		for _, ts := range ws.Timestamps("111") {
			assert.LessOrEqual(now.Sub(ts), 7*time.Second)
		}
	}

	// users are tracked independently
	size, err := ws.Record(ctx, "222", base)
	assert.NoError(err)
	assert.Equal(1, size)
	assert.Equal(2, ws.Len())
}

func TestMemWindowStoreClear(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()
	ws := NewMemWindowStore(7*time.Second, 0)

	for i := 0; i < 5; i++ {
		_, err := ws.Record(ctx, "111", now)
		assert.NoError(err)
	}
	assert.NoError(ws.Clear(ctx, "111"))
	assert.Empty(ws.Timestamps("111"))

	size, err := ws.Record(ctx, "111", now)
	assert.NoError(err)
	assert.Equal(1, size)

	// clearing an unknown user is a no-op
	assert.NoError(ws.Clear(ctx, "unknown"))
	assert.Nil(ws.Timestamps("unknown"))
}

func TestMemWindowStoreCapacity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()
	ws := NewMemWindowStore(7*time.Second, 3)

	for i := 0; i < 10; i++ {
		_, err := ws.Record(ctx, fmt.Sprintf("user-%d", i), now)
		assert.NoError(err)
	}
	assert.Equal(3, ws.Len())
	assert.Nil(ws.Timestamps("user-0"))
	assert.Len(ws.Timestamps("user-9"), 1)
}

func TestMemWindowStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()
	ws := NewMemWindowStore(time.Minute, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := ws.Record(ctx, "111", now)
				assert.NoError(err)
			}
		}()
	}
	wg.Wait()
	assert.Len(ws.Timestamps("111"), 200)
}

func TestActivityWindowPushOutOfOrder(t *testing.T) {
	assert := assert.New(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var w ActivityWindow
	for _, off := range []int{5, 1, 9, 3, 9} {
		w.Push(base.Add(time.Duration(off) * time.Second))
	}
	ts := w.Timestamps()
	assert.Equal(5, len(ts))
	for i := 1; i < len(ts); i++ {
		assert.False(ts[i].Before(ts[i-1]))
	}
	assert.Equal(base.Add(9*time.Second), w.Newest())

	var empty ActivityWindow
	assert.True(empty.Newest().IsZero())
}

func TestMemWindowStoreRecordOutOfOrder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 7 * time.Second
	ws := NewMemWindowStore(window, 0)

	fixtures := []struct {
		offset time.Duration
		size   int
	}{
		{10 * time.Second, 1},
		// arrives late, and is already outside the window ending at +10s
		{2 * time.Second, 1},
		{16 * time.Second, 2},
		{16500 * time.Millisecond, 3},
		{17 * time.Second, 4},
		// late, but still inside the window
		{12 * time.Second, 5},
	}
	newest := base
	for _, fix := range fixtures {
		now := base.Add(fix.offset)
		if now.After(newest) {
			newest = now
		}
		size, err := ws.Record(ctx, "111", now)
		assert.NoError(err)
		assert.Equal(fix.size, size, fix.offset)
		for _, ts := range ws.Timestamps("111") {
			assert.LessOrEqual(newest.Sub(ts), window)
		}
	}
}
