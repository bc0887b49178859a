package engine

type MessageRuleFunc = func(c *MessageContext) error
