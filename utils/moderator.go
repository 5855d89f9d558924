package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Moderator wraps the platform's moderation surface so game logic can be
// exercised without a live gateway session.
type Moderator interface {
	// Timeout applies a temporary communication restriction.
	Timeout(guildID, userID string, d time.Duration, reason string) error
	// Kick removes the member from the guild.
	Kick(guildID, userID string) error
	// GrantRole and RevokeRole manage the spin reward role.
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
	// Members lists the guild's members.
	Members(guildID string) ([]*discordgo.Member, error)
	// IsOwner reports whether the user owns the guild.
	IsOwner(guildID, userID string) bool
}

// SessionModerator implements Moderator over a discordgo session.
type SessionModerator struct {
	Session *discordgo.Session
}

func (m *SessionModerator) Timeout(guildID, userID string, d time.Duration, reason string) error {
	until := time.Now().Add(d)
	return m.Session.GuildMemberTimeout(guildID, userID, &until)
}

func (m *SessionModerator) Kick(guildID, userID string) error {
	return m.Session.GuildMemberDelete(guildID, userID)
}

func (m *SessionModerator) GrantRole(guildID, userID, roleID string) error {
	return m.Session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (m *SessionModerator) RevokeRole(guildID, userID, roleID string) error {
	return m.Session.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (m *SessionModerator) Members(guildID string) ([]*discordgo.Member, error) {
	return m.Session.GuildMembers(guildID, "", 1000)
}

func (m *SessionModerator) IsOwner(guildID, userID string) bool {
	guild, err := m.Session.State.Guild(guildID)
	if err != nil {
		guild, err = m.Session.Guild(guildID)
		if err != nil {
			return false
		}
	}
	return guild.OwnerID == userID
}

// MemberHasRole reports whether the member holds the given role ID.
func MemberHasRole(m *discordgo.Member, roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// MemberHasAnyRole reports whether the member holds any of the role IDs.
func MemberHasAnyRole(m *discordgo.Member, roleIDs []string) bool {
	for _, id := range roleIDs {
		if MemberHasRole(m, id) {
			return true
		}
	}
	return false
}

// IsTimedOut reports whether the member is currently serving a
// communication restriction.
func IsTimedOut(m *discordgo.Member) bool {
	return m.CommunicationDisabledUntil != nil && m.CommunicationDisabledUntil.After(time.Now())
}

// IsRestrictable reports whether the member can be targeted: not a bot,
// not exempt, not already restricted.
func IsRestrictable(m *discordgo.Member, exemptRoles []string) bool {
	if m.User == nil || m.User.Bot {
		return false
	}
	if MemberHasAnyRole(m, exemptRoles) {
		return false
	}
	return !IsTimedOut(m)
}

// EligiblePool filters a member list down to restrictable member IDs.
func EligiblePool(members []*discordgo.Member, exemptRoles []string) []string {
	var pool []string
	for _, m := range members {
		if IsRestrictable(m, exemptRoles) {
			pool = append(pool, m.User.ID)
		}
	}
	return pool
}
