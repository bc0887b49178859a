// Auto-moderation rules engine for chat servers.
//
// This package (`github.com/bluesky-social/hallmonitor/automod`) contains a "rules engine" which checks every inbound chat message against a small set of policies (banned words, message-rate spam) and carries out enforcement: deleting messages, issuing strike warnings, banning repeat offenders, and writing a moderation audit trail. Messages which pass moderation are handed on to a prefix command processor for moderator commands.
//
// Per-user state is kept in pluggable stores: strike counts (`strikestore`, durable), recent message timestamps (`windowstore`, in-memory), and action quota counters (`countstore`).
//
// See `cmd/hallmonitor` for a daemon built on this package.
package automod
