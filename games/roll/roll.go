package roll

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Rare bonus event odds, checked after the primary outcome resolves.
// The kick roll happens first; the mass roll only if the kick missed.
const (
	KickChance = 1e-6
	MassChance = 2e-3
)

// MassTimeoutDuration is the fixed short restriction the mass event
// applies to every eligible member.
const MassTimeoutDuration = 60 * time.Second

// Outcome describes a resolved roll.
type Outcome struct {
	Face     int
	Duration time.Duration
	Targets  []string
	Lucky    bool
	Kicked   string
	Mass     bool
}

// Resolve draws the die and the rare-event rolls. Pool must be non-empty.
// Face 1 targets the invoker (or nobody, when the invoker is exempt);
// face 6 targets two distinct members; faces 2-5 one random member.
func Resolve(pool []string, invoker string, invokerExempt bool, unit time.Duration, rng *rand.Rand) Outcome {
	face := rng.Intn(6) + 1
	out := Outcome{Face: face, Duration: time.Duration(face) * unit}

	switch {
	case face == 1:
		if invokerExempt {
			out.Lucky = true
		} else {
			out.Targets = []string{invoker}
		}
	case face == 6:
		if len(pool) == 1 {
			out.Targets = []string{pool[0]}
		} else {
			first := rng.Intn(len(pool))
			second := rng.Intn(len(pool) - 1)
			if second >= first {
				second++
			}
			out.Targets = []string{pool[first], pool[second]}
		}
	default:
		out.Targets = []string{pool[rng.Intn(len(pool))]}
	}

	if rng.Float64() < KickChance {
		out.Kicked = pool[rng.Intn(len(pool))]
	} else if rng.Float64() < MassChance {
		out.Mass = true
	}
	return out
}

// Handler wires the roll command to the charge gate, the ledger, and the
// moderation collaborator.
type Handler struct {
	Cfg     *utils.Config
	Ledger  *utils.LedgerStore
	Charges *utils.ChargeScheduler
	Mod     utils.Moderator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler constructs the roll handler.
func NewHandler(cfg *utils.Config, ledger *utils.LedgerStore, charges *utils.ChargeScheduler, mod utils.Moderator) *Handler {
	return &Handler{
		Cfg:     cfg,
		Ledger:  ledger,
		Charges: charges,
		Mod:     mod,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterCommand returns the roll slash command definition.
func RegisterCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "roll",
		Description: "Roll the boom die and time someone out",
	}
}

// Handle runs one roll invocation.
func (h *Handler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID := i.GuildID
	userID := i.Member.User.ID

	// The owner always bypasses the charge gate; the global toggle can
	// disable it for everyone.
	gated := h.Cfg.CooldownEnabled && !h.Mod.IsOwner(guildID, userID)
	if gated {
		ok, wait := h.Charges.Consume(guildID, userID)
		if !ok {
			utils.RespondError(s, i, fmt.Sprintf("No charges left. Next charge in %s.", wait.Round(time.Second)))
			return
		}
	}

	members, err := h.Mod.Members(guildID)
	if err != nil {
		if gated {
			h.Charges.Refund(guildID, userID)
		}
		log.Warnf("roll: failed to list members in %s: %v", guildID, err)
		utils.RespondError(s, i, "Could not fetch the member list. Try again later.")
		return
	}

	pool := utils.EligiblePool(members, h.Cfg.ExemptRoles)
	if len(pool) == 0 {
		if gated {
			h.Charges.Refund(guildID, userID)
		}
		utils.RespondError(s, i, "Nobody can be timed out right now.")
		return
	}

	invokerExempt := true
	for _, id := range pool {
		if id == userID {
			invokerExempt = false
			break
		}
	}

	h.mu.Lock()
	out := Resolve(pool, userID, invokerExempt, h.Cfg.TimeoutUnit, h.rng)
	h.mu.Unlock()

	var restricted []string
	for _, target := range out.Targets {
		if err := h.Mod.Timeout(guildID, target, out.Duration, fmt.Sprintf("Boom die rolled a %d", out.Face)); err != nil {
			log.Warnf("roll: failed to timeout %s: %v", target, err)
			continue
		}
		h.Ledger.ApplyExplosion(guildID, target)
		restricted = append(restricted, target)
	}

	embed := h.resultEmbed(out, restricted)
	if err := utils.SendInteractionResponse(s, i, embed, nil, false); err != nil {
		log.Warnf("roll: failed to respond: %v", err)
	}

	h.applyBonusEvents(s, i, out, pool)
}

// applyBonusEvents handles the rare kick and mass-timeout outcomes.
func (h *Handler) applyBonusEvents(s *discordgo.Session, i *discordgo.InteractionCreate, out Outcome, pool []string) {
	switch {
	case out.Kicked != "":
		if err := h.Mod.Kick(i.GuildID, out.Kicked); err != nil {
			log.Warnf("roll: failed to kick %s: %v", out.Kicked, err)
			return
		}
		h.Ledger.ApplyExplosion(i.GuildID, out.Kicked)
		if _, err := s.ChannelMessageSend(i.ChannelID, fmt.Sprintf("☄️ The die turned on <@%s>. They are gone.", out.Kicked)); err != nil {
			log.Warnf("roll: failed to announce kick: %v", err)
		}
	case out.Mass:
		for _, target := range pool {
			if err := h.Mod.Timeout(i.GuildID, target, MassTimeoutDuration, "Mass boom"); err != nil {
				log.Warnf("roll: mass timeout failed for %s: %v", target, err)
				continue
			}
			h.Ledger.ApplyExplosion(i.GuildID, target)
		}
		if _, err := s.ChannelMessageSend(i.ChannelID, "💥 **MASS BOOM!** Everyone is timed out."); err != nil {
			log.Warnf("roll: failed to announce mass boom: %v", err)
		}
	}
}

func (h *Handler) resultEmbed(out Outcome, restricted []string) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("The die shows **%d**.", out.Face)
	switch {
	case out.Lucky:
		desc += " Rolled a 1 on yourself, but you are untouchable. Lucky."
	case len(restricted) == 0:
		desc += " Nobody could be restricted this time."
	default:
		mentions := make([]string, len(restricted))
		for idx, id := range restricted {
			mentions[idx] = fmt.Sprintf("<@%s>", id)
		}
		desc += fmt.Sprintf(" %s timed out for **%s**.",
			strings.Join(mentions, " and "), out.Duration.Round(time.Second))
	}
	return utils.CreateBrandedEmbed("🎲 Boom Die", desc, 0)
}
