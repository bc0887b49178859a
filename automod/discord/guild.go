package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/cachestore"
	"github.com/bluesky-social/hallmonitor/automod/commands"

	"github.com/bwmarrin/discordgo"
)

// Max entries fetched when listing bans or searching members
var (
	banListLimit      = 1000
	memberSearchLimit = 25
)

// Implements commands.Guild against the discord REST API.
type Guild struct {
	Session *discordgo.Session
	// caches member name and role name lookups (optional)
	Cache  cachestore.CacheStore
	Logger *slog.Logger
}

var _ commands.Guild = (*Guild)(nil)

func (g *Guild) Permissions(ctx context.Context, guildID, channelID, userID string) (commands.Permissions, error) {
	raw, err := g.Session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, wrapErr(err)
	}
	return permissionsFromDiscord(raw), nil
}

func permissionsFromDiscord(raw int64) commands.Permissions {
	var out commands.Permissions
	if raw&discordgo.PermissionAdministrator != 0 {
		out |= commands.PermAdministrator
	}
	if raw&discordgo.PermissionKickMembers != 0 {
		out |= commands.PermKickMembers
	}
	if raw&discordgo.PermissionBanMembers != 0 {
		out |= commands.PermBanMembers
	}
	if raw&discordgo.PermissionManageRoles != 0 {
		out |= commands.PermManageRoles
	}
	return out
}

func memberFromDiscord(m *discordgo.Member) *commands.Member {
	return &commands.Member{
		UserID: m.User.ID,
		Name:   m.User.String(),
	}
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Accepts a mention, a user ID, or an exact username, nickname or tag.
func (g *Guild) FindMember(ctx context.Context, guildID, ref string) (*commands.Member, error) {
	id := commands.MentionID(ref)
	if id == "" && isSnowflake(ref) {
		id = ref
	}
	if id != "" {
		m, err := g.Session.GuildMember(guildID, id, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapErr(err)
		}
		return memberFromDiscord(m), nil
	}

	if m := g.cachedMember(ctx, guildID, ref); m != nil {
		return m, nil
	}
	name := strings.SplitN(ref, "#", 2)[0]
	found, err := g.Session.GuildMembersSearch(guildID, name, memberSearchLimit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr(err)
	}
	for _, m := range found {
		if m.User == nil {
			continue
		}
		if m.User.Username == ref || m.User.String() == ref || m.Nick == ref {
			member := memberFromDiscord(m)
			g.cacheSet(ctx, "member", guildID+"/"+ref, member)
			return member, nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", ref, commands.ErrNotFound)
}

func (g *Guild) FindRole(ctx context.Context, guildID, name string) (*commands.Role, error) {
	if g.Cache != nil {
		var role commands.Role
		if g.cacheGet(ctx, "role", guildID+"/"+name, &role) {
			return &role, nil
		}
	}
	roles, err := g.Session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr(err)
	}
	for _, r := range roles {
		if r.Name == name {
			role := &commands.Role{ID: r.ID, Name: r.Name}
			g.cacheSet(ctx, "role", guildID+"/"+name, role)
			return role, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", name, commands.ErrNotFound)
}

func (g *Guild) Kick(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(g.Session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (g *Guild) Ban(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(g.Session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

func (g *Guild) Bans(ctx context.Context, guildID string) ([]commands.BannedUser, error) {
	bans, err := g.Session.GuildBans(guildID, banListLimit, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]commands.BannedUser, 0, len(bans))
	for _, b := range bans {
		if b.User == nil {
			continue
		}
		out = append(out, commands.BannedUser{
			UserID:        b.User.ID,
			Username:      b.User.Username,
			Discriminator: b.User.Discriminator,
		})
	}
	return out, nil
}

func (g *Guild) Unban(ctx context.Context, guildID, userID string) error {
	return wrapErr(g.Session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx)))
}

func (g *Guild) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return wrapErr(g.Session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (g *Guild) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return wrapErr(g.Session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (g *Guild) Send(ctx context.Context, channelID, text string) error {
	_, err := g.Session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return wrapErr(err)
}

func (g *Guild) Latency() time.Duration {
	return g.Session.HeartbeatLatency()
}

func (g *Guild) cachedMember(ctx context.Context, guildID, ref string) *commands.Member {
	if g.Cache == nil {
		return nil
	}
	var m commands.Member
	if g.cacheGet(ctx, "member", guildID+"/"+ref, &m) {
		return &m
	}
	return nil
}

// Cache failures are logged and otherwise treated as a miss.
func (g *Guild) cacheGet(ctx context.Context, name, key string, out any) bool {
	if g.Cache == nil {
		return false
	}
	raw, err := g.Cache.Get(ctx, name, key)
	if err != nil {
		g.logger().Warn("guild cache read failed", "name", name, "err", err)
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		g.logger().Warn("purging malformed guild cache entry", "name", name, "err", err)
		_ = g.Cache.Purge(ctx, name, key)
		return false
	}
	return true
}

func (g *Guild) cacheSet(ctx context.Context, name, key string, val any) {
	if g.Cache == nil {
		return
	}
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := g.Cache.Set(ctx, name, key, string(b)); err != nil {
		g.logger().Warn("guild cache write failed", "name", name, "err", err)
	}
}

func (g *Guild) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
