package rules

import (
	"context"
	"testing"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/stretchr/testify/assert"
)

func TestMessageRateSpamRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engine.EngineTestFixture()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// triggers exactly on the fifth message, then starts over
	for round := 0; round < 2; round++ {
		for i := 1; i <= 5; i++ {
			ts := base.Add(time.Duration(round*10+i) * time.Second / 2)
			c := engine.NewMessageContext(ctx, eng, engine.TestMessage("222", "hello", ts))
			assert.NoError(MessageRateSpamRule(&c))
			if i < 5 {
				assert.True(c.Verdict().IsAllow())
			} else {
				assert.Equal(engine.Spam(5), c.Verdict())
			}
		}
	}

	// window was emptied by the last trigger
	n, err := eng.Windows.Record(ctx, "222", base.Add(10*time.Second))
	assert.NoError(err)
	assert.Equal(1, n)
}

func TestMessageRateSpamRuleLimitOne(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engine.EngineTestFixture()
	eng.Config.SpamMessageLimit = 1

	c := engine.NewMessageContext(ctx, eng, engine.TestMessage("222", "hello", time.Now()))
	assert.NoError(MessageRateSpamRule(&c))
	assert.Equal(engine.Spam(1), c.Verdict())
}
