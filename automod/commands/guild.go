package commands

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type Permissions int64

const (
	PermKickMembers Permissions = 1 << iota
	PermBanMembers
	PermManageRoles
	PermAdministrator
)

// Administrators implicitly hold every permission.
func (p Permissions) Has(want Permissions) bool {
	if p&PermAdministrator != 0 {
		return true
	}
	return p&want == want
}

type Member struct {
	UserID string
	// display form, eg "alice" or "alice#1234"
	Name string
}

func (m *Member) Mention() string {
	return "<@" + m.UserID + ">"
}

type Role struct {
	ID   string
	Name string
}

type BannedUser struct {
	UserID   string
	Username string
	// "0" or empty for accounts on the new username system
	Discriminator string
}

func (b *BannedUser) Tag() string {
	if b.Discriminator == "" || b.Discriminator == "0" {
		return b.Username
	}
	return b.Username + "#" + b.Discriminator
}

// Matches a ban list entry by user ID, mention, username, or legacy "name#discriminator" tag.
func (b *BannedUser) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if id := MentionID(ref); id != "" {
		return id == b.UserID
	}
	return ref == b.UserID || ref == b.Username || ref == b.Tag()
}

// Guild-level operations needed by commands. Implementations must be safe for concurrent use.
type Guild interface {
	// Effective permissions of a member in a channel
	Permissions(ctx context.Context, guildID, channelID, userID string) (Permissions, error)
	// Resolves a member from a mention, user ID, or username. Returns ErrNotFound (wrapped) if there is no match.
	FindMember(ctx context.Context, guildID, ref string) (*Member, error)
	// Resolves a role by exact name. Returns ErrNotFound (wrapped) if there is no match.
	FindRole(ctx context.Context, guildID, name string) (*Role, error)
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	Bans(ctx context.Context, guildID string) ([]BannedUser, error)
	Unban(ctx context.Context, guildID, userID string) error
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	Send(ctx context.Context, channelID, text string) error
	// Gateway heartbeat latency
	Latency() time.Duration
}

// Extracts the user ID from a "<@123>" or "<@!123>" mention; empty string if ref isn't a user mention.
func MentionID(ref string) string {
	if !strings.HasPrefix(ref, "<@") || !strings.HasSuffix(ref, ">") {
		return ""
	}
	id := strings.TrimPrefix(strings.TrimSuffix(ref[2:], ">"), "!")
	if id == "" || strings.HasPrefix(id, "&") {
		return ""
	}
	return id
}
