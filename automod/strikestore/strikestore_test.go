package strikestore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStrikeStoreBasics(t *testing.T, ss StrikeStore) {
	assert := assert.New(t)
	ctx := context.Background()

	c, err := ss.GetStrikes(ctx, "111")
	assert.NoError(err)
	assert.Equal(0, c)

	// counts are monotonic, and returned by increment
	for i := 1; i <= 5; i++ {
		c, err = ss.IncrementStrikes(ctx, "111")
		assert.NoError(err)
		assert.Equal(i, c)
		c, err = ss.GetStrikes(ctx, "111")
		assert.NoError(err)
		assert.Equal(i, c)
	}

	// other users are independent
	c, err = ss.GetStrikes(ctx, "222")
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = ss.IncrementStrikes(ctx, "222")
	assert.NoError(err)
	assert.Equal(1, c)
}

func testStrikeStoreConcurrent(t *testing.T, ss StrikeStore) {
	assert := assert.New(t)
	ctx := context.Background()

	// run this with `-race`!
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := ss.IncrementStrikes(ctx, "333")
				assert.NoError(err)
				_, err = ss.IncrementStrikes(ctx, fmt.Sprintf("user-%d", n))
				assert.NoError(err)
			}
		}(i)
	}
	wg.Wait()

	c, err := ss.GetStrikes(ctx, "333")
	assert.NoError(err)
	assert.Equal(40, c)
	c, err = ss.GetStrikes(ctx, "user-2")
	assert.NoError(err)
	assert.Equal(10, c)
}

func TestMemStrikeStore(t *testing.T) {
	testStrikeStoreBasics(t, NewMemStrikeStore())
	testStrikeStoreConcurrent(t, NewMemStrikeStore())

	ms := NewMemStrikeStore()
	_, _ = ms.IncrementStrikes(context.Background(), "a")
	snap := ms.Snapshot()
	snap["a"] = 100
	c, _ := ms.GetStrikes(context.Background(), "a")
	assert.Equal(t, 1, c)
}

func TestRedisStrikeStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")

	rss, err := NewRedisStrikeStore("redis://localhost:6379/0")
	if err != nil {
		t.Fatal(err)
	}
	assert.NoError(t, rss.Client.Del(context.Background(), redisStrikeKey).Err())
	testStrikeStoreBasics(t, rss)
}
