package countstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "automod-quota", "ban", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.Increment(ctx, "automod-quota", "ban"))
	assert.NoError(cs.Increment(ctx, "automod-quota", "ban"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, "automod-quota", "ban", period)
		assert.NoError(err)
		assert.Equal(2, c)
	}

	c, err = cs.GetCount(ctx, "automod-quota", "delete", PeriodHour)
	assert.NoError(err)
	assert.Equal(0, c)
}

func TestMemCountStorePeriodRollover(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 10, 59, 0, 0, time.UTC)
	cs := NewMemCountStore()
	cs.now = func() time.Time { return now }

	assert.NoError(cs.Increment(ctx, "automod-quota", "ban"))
	assert.NoError(cs.Increment(ctx, "automod-quota", "ban"))

	// next hour, same day
	now = now.Add(2 * time.Minute)
	c, err := cs.GetCount(ctx, "automod-quota", "ban", PeriodHour)
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = cs.GetCount(ctx, "automod-quota", "ban", PeriodDay)
	assert.NoError(err)
	assert.Equal(2, c)

	// next day
	now = now.Add(24 * time.Hour)
	c, err = cs.GetCount(ctx, "automod-quota", "ban", PeriodDay)
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = cs.GetCount(ctx, "automod-quota", "ban", PeriodTotal)
	assert.NoError(err)
	assert.Equal(2, c)
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	// Increment two different values from four different goroutines, with interleaved reads.
	// Run this with `-race`!
	var wg sync.WaitGroup
	fnInc := func(name, val string, times int) {
		for i := 0; i < times; i++ {
			assert.NoError(cs.Increment(ctx, name, val))
			time.Sleep(time.Nanosecond)
		}
		wg.Done()
	}
	fnRead := func(name, val string, times int) {
		for i := 0; i < times; i++ {
			_, err := cs.GetCount(ctx, name, val, PeriodTotal)
			assert.NoError(err)
			time.Sleep(time.Nanosecond)
		}
	}
	wg.Add(4)
	go fnInc("test1", "val1", 10)
	go fnInc("test1", "val1", 10)
	go fnRead("test1", "val1", 10)
	go fnInc("test2", "val2", 6)
	go fnInc("test2", "val2", 6)
	go fnRead("test2", "val2", 6)
	wg.Wait()

	c, err := cs.GetCount(ctx, "test1", "val1", PeriodTotal)
	assert.NoError(err)
	assert.Equal(20, c)
	c, err = cs.GetCount(ctx, "test2", "val2", PeriodTotal)
	assert.NoError(err)
	assert.Equal(12, c)
}

func TestRedisCountStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	cs, err := NewRedisCountStore("redis://localhost:6379/0")
	if err != nil {
		t.Fatal(err)
	}
	before, err := cs.GetCount(ctx, "test-quota", "ban", PeriodTotal)
	assert.NoError(err)
	assert.NoError(cs.Increment(ctx, "test-quota", "ban"))
	after, err := cs.GetCount(ctx, "test-quota", "ban", PeriodTotal)
	assert.NoError(err)
	assert.Equal(before+1, after)
}
