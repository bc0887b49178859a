package engine

import (
	"fmt"
	"time"
)

var (
	// how long transient notices (warnings, spam notices) stay in the channel before being deleted
	TransientNoticeTTL = 8 * time.Second
	// max length of a single chat message on the platform; longer audit lines are truncated
	MaxMessageLength = 2000
)

// Moderation thresholds. Fixed at startup.
type Config struct {
	// Sliding window for message-rate spam detection
	SpamWindow time.Duration
	// Number of messages within SpamWindow which counts as spam
	SpamMessageLimit int
	// Strike count at which a user is banned for profanity
	StrikesToBan int
	// Messages starting with this text get a greeting reply. Empty disables greetings.
	GreetingTrigger string
	// Max automated bans per hour (circuit breaker). Zero or less disables the quota.
	BanQuotaHour int
}

func DefaultConfig() Config {
	return Config{
		SpamWindow:       7 * time.Second,
		SpamMessageLimit: 5,
		StrikesToBan:     3,
		GreetingTrigger:  "Hey",
	}
}

func (c *Config) Validate() error {
	if c.SpamWindow <= 0 {
		return fmt.Errorf("spam window must be positive: %s", c.SpamWindow)
	}
	if c.SpamMessageLimit < 1 {
		return fmt.Errorf("spam message limit must be at least 1: %d", c.SpamMessageLimit)
	}
	if c.StrikesToBan < 1 {
		return fmt.Errorf("strikes to ban must be at least 1: %d", c.StrikesToBan)
	}
	return nil
}
