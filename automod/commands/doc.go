// Prefix commands for moderators (eg, "!kick <member> [reason]"), run on messages which pass automated moderation.
//
// Platform access goes through the Guild interface; see the automod/discord package for the real implementation.
package commands
