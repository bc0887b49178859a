// Discord implementations of the engine's Platform and AuditSink interfaces, and of the commands.Guild interface, on top of a discordgo session.
package discord
