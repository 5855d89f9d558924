package spin

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EscalationTTL is the decision window for the double-or-nothing offer.
const EscalationTTL = 60 * time.Second

var (
	errStaleWindow = errors.New("escalation window is gone")
	errWrongActor  = errors.New("not the spinning member")
)

// escalation is an open double-or-nothing window. Single use: the first
// interaction by the winner consumes it.
type escalation struct {
	Token       string
	GuildID     string
	UserID      string
	GrantedAt   time.Time
	Interaction *discordgo.InteractionCreate
}

// Handler runs the monthly spin wheel and its escalation sub-game.
type Handler struct {
	Cfg    *utils.Config
	Ledger *utils.LedgerStore
	Spins  *utils.SpinStore
	Tasks  *utils.TaskScheduler
	Mod    utils.Moderator

	mu          sync.Mutex
	escalations map[string]*escalation
	generations map[string]int
	rng         *rand.Rand
}

// NewHandler constructs the spin handler.
func NewHandler(cfg *utils.Config, ledger *utils.LedgerStore, spins *utils.SpinStore, tasks *utils.TaskScheduler, mod utils.Moderator) *Handler {
	return &Handler{
		Cfg:         cfg,
		Ledger:      ledger,
		Spins:       spins,
		Tasks:       tasks,
		Mod:         mod,
		escalations: make(map[string]*escalation),
		generations: make(map[string]int),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterCommand returns the spin slash command definition.
func RegisterCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "spin",
		Description: "Spin the wheel: win a week of privilege or a week of silence",
	}
}

func (h *Handler) flip() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Intn(2) == 0
}

// bumpGeneration invalidates any scheduled revocation for the member's
// current reward and returns the new generation.
func (h *Handler) bumpGeneration(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.generations[key]++
	return h.generations[key]
}

func (h *Handler) currentGeneration(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generations[key]
}

// scheduleRevocation arms the fire-once role removal. The task re-checks
// the generation when it fires and no-ops when a later escalation
// superseded it.
func (h *Handler) scheduleRevocation(guildID, userID string, gen int, delay time.Duration) {
	key := guildID + ":" + userID
	h.Tasks.After(delay, func() {
		if h.currentGeneration(key) != gen {
			return
		}
		if err := h.Mod.RevokeRole(guildID, userID, h.Cfg.SpinRole); err != nil {
			log.Warnf("spin: failed to revoke role from %s: %v", userID, err)
		}
	})
}

// HandleCommand runs one spin.
func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID := i.GuildID
	userID := i.Member.User.ID

	won := h.flip()
	if err := h.Spins.Record(guildID, userID, won); err != nil {
		switch {
		case errors.Is(err, utils.ErrAlreadySpun):
			utils.RespondError(s, i, "You already spun the wheel this month.")
		case errors.Is(err, utils.ErrSpinQuotaReached):
			utils.RespondError(s, i, fmt.Sprintf("All %d spins are used up this month.", utils.MaxSpinsPerMonth))
		default:
			log.Errorf("spin: failed to record spin: %v", err)
			utils.RespondError(s, i, "Something went wrong. Try again later.")
		}
		return
	}

	if !won {
		if err := h.Mod.Timeout(guildID, userID, h.Cfg.SpinPenalty, "Lost the wheel"); err != nil {
			log.Warnf("spin: failed to timeout %s: %v", userID, err)
		}
		h.Ledger.ApplyExplosion(guildID, userID)
		embed := utils.CreateBrandedEmbed("🎡 The Wheel",
			fmt.Sprintf("The wheel shows 💀. Enjoy **%s** of silence.", formatDuration(h.Cfg.SpinPenalty)), 0xFF0000)
		if err := utils.SendInteractionResponse(s, i, embed, nil, false); err != nil {
			log.Warnf("spin: failed to respond: %v", err)
		}
		return
	}

	if err := h.Mod.GrantRole(guildID, userID, h.Cfg.SpinRole); err != nil {
		log.Warnf("spin: failed to grant role to %s: %v", userID, err)
	}
	key := guildID + ":" + userID
	gen := h.bumpGeneration(key)
	h.scheduleRevocation(guildID, userID, gen, h.Cfg.SpinReward)

	token := uuid.NewString()
	esc := &escalation{
		Token:       token,
		GuildID:     guildID,
		UserID:      userID,
		GrantedAt:   time.Now(),
		Interaction: i,
	}
	h.mu.Lock()
	h.escalations[token] = esc
	h.mu.Unlock()
	h.Tasks.After(EscalationTTL, func() { h.expireEscalation(s, token) })

	embed := utils.CreateBrandedEmbed("🎡 The Wheel",
		fmt.Sprintf("The wheel shows 👑! You hold the crown for **%s**.\n\nDouble or nothing? You have 60 seconds.",
			formatDuration(h.Cfg.SpinReward)), 0x00FF00)
	components := []discordgo.MessageComponent{
		utils.CreateActionRow(
			utils.CreateButton("spin_double_"+token, "Double", discordgo.DangerButton, false, &discordgo.ComponentEmoji{Name: "🎲"}),
			utils.CreateButton("spin_keep_"+token, "Keep", discordgo.SuccessButton, false, &discordgo.ComponentEmoji{Name: "👑"}),
		),
	}
	if err := utils.SendInteractionResponse(s, i, embed, components, false); err != nil {
		log.Warnf("spin: failed to respond: %v", err)
	}
}

// takeEscalation consumes the window for the given token if the actor is
// the winner. A wrong actor is rejected without consuming the session.
func (h *Handler) takeEscalation(token, userID string) (*escalation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	esc, ok := h.escalations[token]
	if !ok {
		return nil, errStaleWindow
	}
	if esc.UserID != userID {
		return nil, errWrongActor
	}
	delete(h.escalations, token)
	return esc, nil
}

// expireEscalation resolves an untouched window: the original win stands
// and the buttons are removed.
func (h *Handler) expireEscalation(s *discordgo.Session, token string) {
	h.mu.Lock()
	esc, ok := h.escalations[token]
	if ok {
		delete(h.escalations, token)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	embed := utils.CreateBrandedEmbed("🎡 The Wheel",
		fmt.Sprintf("The offer expired. The crown stays for **%s**.", formatDuration(h.Cfg.SpinReward)), 0x00FF00)
	if err := utils.EditOriginalInteraction(s, esc.Interaction, embed, nil); err != nil {
		log.Warnf("spin: failed to close escalation window: %v", err)
	}
}

// HandleInteraction handles the double/keep buttons.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cid := i.MessageComponentData().CustomID
	userID := i.Member.User.ID

	var token string
	var double bool
	switch {
	case strings.HasPrefix(cid, "spin_double_"):
		token = strings.TrimPrefix(cid, "spin_double_")
		double = true
	case strings.HasPrefix(cid, "spin_keep_"):
		token = strings.TrimPrefix(cid, "spin_keep_")
	default:
		return
	}

	esc, err := h.takeEscalation(token, userID)
	if err != nil {
		if errors.Is(err, errWrongActor) {
			utils.RespondError(s, i, "Only the member who spun may decide.")
		} else {
			utils.RespondError(s, i, "That offer is no longer open.")
		}
		return
	}

	if !double {
		embed := utils.CreateBrandedEmbed("🎡 The Wheel",
			fmt.Sprintf("Wise. The crown stays for **%s**.", formatDuration(h.Cfg.SpinReward)), 0x00FF00)
		if err := utils.UpdateComponentInteraction(s, i, embed, nil); err != nil {
			log.Warnf("spin: failed to respond to keep: %v", err)
		}
		return
	}

	key := esc.GuildID + ":" + esc.UserID
	if h.flip() {
		// The doubled reward supersedes the original revocation schedule.
		gen := h.bumpGeneration(key)
		remaining := time.Until(esc.GrantedAt.Add(2 * h.Cfg.SpinReward))
		h.scheduleRevocation(esc.GuildID, esc.UserID, gen, remaining)

		embed := utils.CreateBrandedEmbed("🎡 The Wheel",
			fmt.Sprintf("Doubled! The crown now stays for **%s**.", formatDuration(2*h.Cfg.SpinReward)), 0x00FF00)
		if err := utils.UpdateComponentInteraction(s, i, embed, nil); err != nil {
			log.Warnf("spin: failed to respond to double win: %v", err)
		}
		return
	}

	// Double loss: the crown comes off now and the penalty doubles.
	h.bumpGeneration(key)
	if err := h.Mod.RevokeRole(esc.GuildID, esc.UserID, h.Cfg.SpinRole); err != nil {
		log.Warnf("spin: failed to revoke role from %s: %v", esc.UserID, err)
	}
	if err := h.Mod.Timeout(esc.GuildID, esc.UserID, 2*h.Cfg.SpinPenalty, "Doubled down and lost"); err != nil {
		log.Warnf("spin: failed to timeout %s: %v", esc.UserID, err)
	}
	h.Ledger.ApplyExplosion(esc.GuildID, esc.UserID)

	embed := utils.CreateBrandedEmbed("🎡 The Wheel",
		fmt.Sprintf("Greed. The crown is gone and you get **%s** of silence.", formatDuration(2*h.Cfg.SpinPenalty)), 0xFF0000)
	if err := utils.UpdateComponentInteraction(s, i, embed, nil); err != nil {
		log.Warnf("spin: failed to respond to double loss: %v", err)
	}
}

func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		days := d / (24 * time.Hour)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.Round(time.Second).String()
}
