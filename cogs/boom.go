package cogs

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BoomResolver decides, per qualifying message, whether the author gets a
// random timeout, and records the outcome in the ledger.
type BoomResolver struct {
	Cfg    *utils.Config
	Ledger *utils.LedgerStore
	Mod    utils.Moderator

	mu       sync.Mutex
	lastBoom map[string]time.Time
	randFn   func() float64
}

// NewBoomResolver wires the resolver to its stores.
func NewBoomResolver(cfg *utils.Config, ledger *utils.LedgerStore, mod utils.Moderator) *BoomResolver {
	return &BoomResolver{
		Cfg:      cfg,
		Ledger:   ledger,
		Mod:      mod,
		lastBoom: make(map[string]time.Time),
		randFn:   rand.Float64,
	}
}

// TriggerChance computes the effective trigger probability for a member
// holding the given roles: the base chance, boosted by the at-risk
// multiplier (capped at 1.0), then raised to the first matching role
// override when that override is higher. The scan stops at the first
// matching override.
func (br *BoomResolver) TriggerChance(roleIDs []string) float64 {
	has := func(roleID string) bool {
		for _, id := range roleIDs {
			if id == roleID {
				return true
			}
		}
		return false
	}

	chance := br.Cfg.BaseChance
	if br.Cfg.AtRiskRole != "" && has(br.Cfg.AtRiskRole) {
		chance *= br.Cfg.AtRiskMultiplier
		if chance > 1.0 {
			chance = 1.0
		}
	}
	for _, ov := range br.Cfg.RoleOverrides {
		if has(ov.RoleID) {
			if ov.Chance > chance {
				chance = ov.Chance
			}
			break
		}
	}
	return chance
}

// onCooldown checks and does not modify; the stamp is written only after a
// successful timeout.
func (br *BoomResolver) onCooldown(guildID, userID string) bool {
	br.mu.Lock()
	defer br.mu.Unlock()
	last, ok := br.lastBoom[guildID+":"+userID]
	return ok && time.Since(last) < br.Cfg.BoomCooldown
}

func (br *BoomResolver) stampCooldown(guildID, userID string) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.lastBoom[guildID+":"+userID] = time.Now()
}

// HandleMessage is the passive per-message hook.
func (br *BoomResolver) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" || m.Member == nil {
		return
	}
	if !br.Cfg.WatchesChannel(m.ChannelID) {
		return
	}
	member := m.Member
	member.User = m.Author
	if utils.MemberHasAnyRole(member, br.Cfg.ExemptRoles) {
		return
	}
	if br.onCooldown(m.GuildID, m.Author.ID) {
		return
	}
	if br.randFn() >= br.TriggerChance(member.Roles) {
		return
	}

	if err := br.Mod.Timeout(m.GuildID, m.Author.ID, br.Cfg.TimeoutUnit, "Boom"); err != nil {
		log.Warnf("failed to timeout %s in %s: %v", m.Author.ID, m.GuildID, err)
		return
	}
	rec := br.Ledger.ApplyExplosion(m.GuildID, m.Author.ID)
	br.stampCooldown(m.GuildID, m.Author.ID)

	if _, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("<@%s>, Boom! 💥", m.Author.ID)); err != nil {
		log.Warnf("failed to send boom notice: %v", err)
	}
	log.Infof("boomed %s in %s (explosions=%d, level=%d)", m.Author.ID, m.GuildID, rec.Explosions, rec.Level)
}
