package rules

import (
	"github.com/bluesky-social/hallmonitor/automod/engine"
)

var _ engine.MessageRuleFunc = MessageRateSpamRule

// Flags a user who sends too many messages within the configured window.
//
// The user's window is cleared when the rule triggers, so a sustained burst triggers once per limit's worth of messages, not on every message.
func MessageRateSpamRule(c *engine.MessageContext) error {
	cfg := c.Config()
	n := c.RecordActivity()
	if c.Err != nil {
		return c.Err
	}
	if n < cfg.SpamMessageLimit {
		return nil
	}
	c.ClearActivity()
	if c.Err != nil {
		return c.Err
	}
	c.Logger.Info("message rate over limit", "count", n, "window", cfg.SpamWindow)
	c.SetVerdict(engine.Spam(n))
	return nil
}
