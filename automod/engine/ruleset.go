package engine

// Holds the ordered list of message rules, and dispatches events to them.
type RuleSet struct {
	MessageRules []MessageRuleFunc
}

// Runs message rules in order, stopping at the first rule which sets a non-allow verdict.
//
// Later rules are not evaluated at all once a verdict is reached, so they have no side-effects (eg, a message which triggers profanity is not recorded in the spam window).
func (r *RuleSet) CallMessageRules(c *MessageContext) error {
	for _, f := range r.MessageRules {
		err := f(c)
		if err != nil {
			return err
		}
		if c.Err != nil {
			return c.Err
		}
		if !c.verdict.IsAllow() {
			return nil
		}
	}
	return nil
}
