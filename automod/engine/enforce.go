package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bluesky-social/hallmonitor/automod/countstore"
)

// Each step below is attempted independently: a failure is logged and counted, and the next step still runs.

func (eng *Engine) enforceProfanity(c *MessageContext, v Verdict) {
	evt := &c.Event
	eng.deleteMessage(c)
	eng.sendNotice(c, "warn", fmt.Sprintf("%s, that language is not allowed. Strike %d/%d.", evt.AuthorMention(), v.Strikes, eng.Config.StrikesToBan))
	eng.logModAction(c, fmt.Sprintf("Profanity: %s (%s) used banned word in %s. Strike %d.", evt.AuthorName, evt.AuthorID, evt.ChannelMention(), v.Strikes))

	if v.Strikes < eng.Config.StrikesToBan {
		return
	}
	if !evt.InGuild() {
		// no guild to ban from
		c.Logger.Info("strike threshold reached in direct message, not banning", "strikes", v.Strikes)
		return
	}
	if !eng.circuitBreakBan(c) {
		return
	}
	if err := eng.banUser(c, "Exceeded profanity strikes"); err != nil {
		eng.logModAction(c, fmt.Sprintf("Failed to ban %s: %s", evt.AuthorName, err))
		return
	}
	eng.logModAction(c, fmt.Sprintf("Banned %s for exceeding profanity strikes.", evt.AuthorName))
}

func (eng *Engine) enforceSpam(c *MessageContext, v Verdict) {
	evt := &c.Event
	eng.deleteMessage(c)

	if !evt.InGuild() {
		eng.sendNotice(c, "notify", "Please stop spamming.")
		return
	}
	if !eng.circuitBreakBan(c) {
		return
	}
	if err := eng.banUser(c, "Spam detected (automated)"); err != nil {
		eng.logModAction(c, fmt.Sprintf("Failed to ban %s for spam: %s", evt.AuthorName, err))
		return
	}
	eng.sendNotice(c, "notify", fmt.Sprintf("%s has been banned for spamming.", evt.AuthorMention()))
	eng.logModAction(c, fmt.Sprintf("Banned %s for spamming (%d msgs in %gs).", evt.AuthorName, v.WindowSize, eng.Config.SpamWindow.Seconds()))
}

func (eng *Engine) handleAllowed(c *MessageContext) {
	evt := &c.Event
	if eng.Config.GreetingTrigger != "" && strings.HasPrefix(evt.Text, eng.Config.GreetingTrigger) {
		if err := eng.Platform.SendMessage(c.Ctx, evt.ChannelID, fmt.Sprintf("Hello There %s!", evt.AuthorMention()), SendOptions{}); err != nil {
			eng.actionFailed(c, "greet", err)
		} else {
			actionCount.WithLabelValues("greet").Inc()
		}
	}
	if eng.Commands != nil {
		if err := eng.Commands.ProcessCommand(c.Ctx, evt); err != nil {
			c.Logger.Error("command processing failed", "err", err)
		}
	}
}

// Best-effort; permission failures are also recorded in the audit trail.
func (eng *Engine) deleteMessage(c *MessageContext) {
	evt := &c.Event
	err := eng.Platform.DeleteMessage(c.Ctx, evt.ChannelID, evt.MessageID)
	if err == nil {
		actionCount.WithLabelValues("delete").Inc()
		return
	}
	eng.actionFailed(c, "delete", err)
	if errors.Is(err, ErrForbidden) {
		eng.logModAction(c, fmt.Sprintf("Missing permission to delete message from %s in %s.", evt.AuthorName, evt.ChannelMention()))
	}
}

// Sends a transient message to the event's channel.
func (eng *Engine) sendNotice(c *MessageContext, action, text string) {
	err := eng.Platform.SendMessage(c.Ctx, c.Event.ChannelID, text, SendOptions{DeleteAfter: TransientNoticeTTL})
	if err != nil {
		eng.actionFailed(c, action, err)
		return
	}
	actionCount.WithLabelValues(action).Inc()
}

func (eng *Engine) banUser(c *MessageContext, reason string) error {
	evt := &c.Event
	c.Logger.Warn("banning user", "reason", reason)
	err := eng.Platform.BanUser(c.Ctx, evt.GuildID, evt.AuthorID, reason)
	if err != nil {
		eng.actionFailed(c, "ban", err)
		return err
	}
	actionCount.WithLabelValues("ban").Inc()
	return nil
}

// Checks the hourly ban quota, and consumes one unit of it if allowed.
//
// Counter failures don't block enforcement.
func (eng *Engine) circuitBreakBan(c *MessageContext) bool {
	if eng.Config.BanQuotaHour <= 0 || eng.Counters == nil {
		return true
	}
	n, err := eng.Counters.GetCount(c.Ctx, "automod-quota", "ban", countstore.PeriodHour)
	if err != nil {
		c.Logger.Error("reading ban quota", "err", err)
		return true
	}
	if n >= eng.Config.BanQuotaHour {
		c.Logger.Warn("CIRCUIT BREAKER: automod bans", "quota", eng.Config.BanQuotaHour)
		circuitBreakerCount.WithLabelValues("ban").Inc()
		eng.logModAction(c, fmt.Sprintf("CIRCUIT BREAKER: skipped ban of %s", c.Event.AuthorName))
		return false
	}
	if err := eng.Counters.Increment(c.Ctx, "automod-quota", "ban"); err != nil {
		c.Logger.Error("incrementing ban quota", "err", err)
	}
	return true
}

func (eng *Engine) actionFailed(c *MessageContext, action string, err error) {
	actionErrorCount.WithLabelValues(action).Inc()
	if errors.Is(err, ErrForbidden) {
		c.Logger.Warn("missing permission for moderation action", "action", action, "err", err)
		return
	}
	c.Logger.Warn("moderation action failed", "action", action, "err", err)
}

// Records an entry in the audit trail. Always logged; also sent to the audit sink, if configured.
func (eng *Engine) logModAction(c *MessageContext, text string) {
	c.Logger.Info("mod action", "text", text)
	if eng.Audit == nil {
		return
	}
	if err := eng.Audit.LogModAction(c.Ctx, text); err != nil {
		eng.actionFailed(c, "audit", err)
		return
	}
	actionCount.WithLabelValues("audit").Inc()
}
