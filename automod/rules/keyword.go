package rules

import (
	"github.com/bluesky-social/hallmonitor/automod/engine"
)

var _ engine.MessageRuleFunc = BannedWordMessageRule

// Records a strike for any message containing a banned word, anywhere in the text (including inside longer words).
func BannedWordMessageRule(c *engine.MessageContext) error {
	words := c.BannedWords()
	if words == nil || words.Len() == 0 {
		return nil
	}
	word := words.Match(c.Event.Text)
	if word == "" {
		return nil
	}
	strikes := c.IncrementStrikes()
	if c.Err != nil {
		return c.Err
	}
	c.Logger.Info("banned word in message", "strikes", strikes)
	c.SetVerdict(engine.Profanity(strikes, word))
	return nil
}
