package rules

import (
	"github.com/bluesky-social/hallmonitor/automod/engine"
)

// Message rules in strict priority order: the first rule to reach a verdict wins, and later rules are not evaluated.
func DefaultRules() engine.RuleSet {
	rules := engine.RuleSet{
		MessageRules: []engine.MessageRuleFunc{
			BannedWordMessageRule,
			MessageRateSpamRule,
		},
	}
	return rules
}
