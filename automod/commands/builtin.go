package commands

import (
	"errors"
	"fmt"

	"github.com/bluesky-social/hallmonitor/automod/engine"
)

const defaultReason = "No reason provided"

func DefaultCommands() []Command {
	return []Command{
		{Name: "ping", Handler: PingCommand},
		{Name: "kick", Permissions: PermKickMembers, Handler: KickCommand},
		{Name: "ban", Permissions: PermBanMembers, Handler: BanCommand},
		{Name: "unban", Permissions: PermBanMembers, Handler: UnbanCommand},
		{Name: "addrole", Permissions: PermManageRoles, Handler: AddRoleCommand},
		{Name: "removerole", Permissions: PermManageRoles, Handler: RemoveRoleCommand},
		{Name: "mention", Permissions: PermAdministrator, Handler: MentionCommand},
	}
}

func PingCommand(inv *Invocation) error {
	ms := inv.proc.Guild.Latency().Milliseconds()
	inv.reply(fmt.Sprintf("Pong! Latency: %dms", ms))
	return nil
}

// Resolves the first argument to a guild member.
func (inv *Invocation) member() (*Member, error) {
	if len(inv.Args) == 0 {
		return nil, missingArgument("member")
	}
	ref := inv.Args[0]
	m, err := inv.proc.Guild.FindMember(inv.Ctx, inv.Event.GuildID, ref)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("member %q not found", ref)
	} else if err != nil {
		return nil, err
	}
	return m, nil
}

func (inv *Invocation) reason() string {
	if r := inv.RestAfter(1); r != "" {
		return r
	}
	return defaultReason
}

func KickCommand(inv *Invocation) error {
	m, err := inv.member()
	if err != nil {
		return err
	}
	reason := inv.reason()
	evt := inv.Event
	if err := inv.proc.Guild.Kick(inv.Ctx, evt.GuildID, m.UserID, fmt.Sprintf("%s (by %s)", reason, evt.AuthorName)); err != nil {
		inv.reply(fmt.Sprintf("Failed to kick: %s", err))
		return nil
	}
	inv.reply(fmt.Sprintf("%s has been kicked. Reason: %s", m.Mention(), reason))
	inv.LogModAction(fmt.Sprintf("%s kicked %s. Reason: %s", evt.AuthorName, m.Name, reason))
	return nil
}

func BanCommand(inv *Invocation) error {
	m, err := inv.member()
	if err != nil {
		return err
	}
	reason := inv.reason()
	evt := inv.Event
	if err := inv.proc.Guild.Ban(inv.Ctx, evt.GuildID, m.UserID, fmt.Sprintf("%s (by %s)", reason, evt.AuthorName)); err != nil {
		inv.reply(fmt.Sprintf("Failed to ban: %s", err))
		return nil
	}
	inv.reply(fmt.Sprintf("%s has been banned. Reason: %s", m.Mention(), reason))
	inv.LogModAction(fmt.Sprintf("%s banned %s. Reason: %s", evt.AuthorName, m.Name, reason))
	return nil
}

func UnbanCommand(inv *Invocation) error {
	if inv.Rest == "" {
		return missingArgument("user")
	}
	evt := inv.Event
	bans, err := inv.proc.Guild.Bans(inv.Ctx, evt.GuildID)
	if err != nil {
		inv.reply(fmt.Sprintf("Failed to unban: %s", err))
		return nil
	}
	for _, b := range bans {
		if !b.Matches(inv.Rest) {
			continue
		}
		if err := inv.proc.Guild.Unban(inv.Ctx, evt.GuildID, b.UserID); err != nil {
			inv.reply(fmt.Sprintf("Failed to unban: %s", err))
			return nil
		}
		inv.reply(fmt.Sprintf("Unbanned <@%s>", b.UserID))
		inv.LogModAction(fmt.Sprintf("%s unbanned %s.", evt.AuthorName, b.Tag()))
		return nil
	}
	inv.reply("User not found in ban list.")
	return nil
}

// Shared implementation of addrole and removerole.
func changeRole(inv *Invocation, add bool) error {
	m, err := inv.member()
	if err != nil {
		return err
	}
	roleName := inv.RestAfter(1)
	if roleName == "" {
		return missingArgument("role_name")
	}
	evt := inv.Event
	role, err := inv.proc.Guild.FindRole(inv.Ctx, evt.GuildID, roleName)
	if errors.Is(err, ErrNotFound) {
		inv.reply("Role not found.")
		return nil
	} else if err != nil {
		return err
	}

	if add {
		err = inv.proc.Guild.AddRole(inv.Ctx, evt.GuildID, m.UserID, role.ID, "Role added by "+evt.AuthorName)
	} else {
		err = inv.proc.Guild.RemoveRole(inv.Ctx, evt.GuildID, m.UserID, role.ID, "Role removed by "+evt.AuthorName)
	}
	switch {
	case errors.Is(err, engine.ErrForbidden):
		inv.reply("I don't have permission to manage that role.")
	case err != nil && add:
		inv.reply(fmt.Sprintf("Failed to add role: %s", err))
	case err != nil:
		inv.reply(fmt.Sprintf("Failed to remove role: %s", err))
	case add:
		inv.reply(fmt.Sprintf("Added role %s to %s.", role.Name, m.Mention()))
		inv.LogModAction(fmt.Sprintf("%s added role %s to %s.", evt.AuthorName, role.Name, m.Name))
	default:
		inv.reply(fmt.Sprintf("Removed role %s from %s.", role.Name, m.Mention()))
		inv.LogModAction(fmt.Sprintf("%s removed role %s from %s.", evt.AuthorName, role.Name, m.Name))
	}
	return nil
}

func AddRoleCommand(inv *Invocation) error {
	return changeRole(inv, true)
}

func RemoveRoleCommand(inv *Invocation) error {
	return changeRole(inv, false)
}

// Echoes the text back, so admins can ping roles or users through the bot.
func MentionCommand(inv *Invocation) error {
	if inv.Rest == "" {
		return missingArgument("target")
	}
	inv.reply(inv.Rest)
	return nil
}
