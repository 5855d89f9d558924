package roulette

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var redNumbers = map[int]struct{}{1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {}, 19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {}}

// Color classifies a wheel number; 0 is green.
func Color(n int) string {
	if n == 0 {
		return "green"
	}
	if _, ok := redNumbers[n]; ok {
		return "red"
	}
	return "black"
}

// Resolve checks a bet space against a drawn number and returns the win
// multiplier. Even and odd explicitly exclude 0.
func Resolve(space string, n int) (mult int64, win bool, err error) {
	space = strings.TrimSpace(strings.ToLower(space))

	if num, convErr := strconv.Atoi(space); convErr == nil {
		if num < 0 || num > 36 {
			return 0, false, fmt.Errorf("number must be between 0 and 36")
		}
		return 35, n == num, nil
	}

	switch space {
	case "red":
		return 1, Color(n) == "red", nil
	case "black":
		return 1, Color(n) == "black", nil
	case "even":
		return 1, n != 0 && n%2 == 0, nil
	case "odd":
		return 1, n != 0 && n%2 == 1, nil
	case "low", "1-18":
		return 1, n >= 1 && n <= 18, nil
	case "high", "19-36":
		return 1, n >= 19 && n <= 36, nil
	case "1st12", "1-12":
		return 2, n >= 1 && n <= 12, nil
	case "2nd12", "13-24":
		return 2, n >= 13 && n <= 24, nil
	case "3rd12", "25-36":
		return 2, n >= 25 && n <= 36, nil
	default:
		return 0, false, fmt.Errorf("unknown bet space %q", space)
	}
}

// Handler runs single-shot roulette spins against the ledger.
type Handler struct {
	Ledger *utils.LedgerStore

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler constructs the roulette handler.
func NewHandler(ledger *utils.LedgerStore) *Handler {
	return &Handler{
		Ledger: ledger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterCommand returns the roulette slash command definition.
func RegisterCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "roulette",
		Description: "Wager explosions on the roulette wheel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "space",
				Description: "A number 0-36, red/black, even/odd, low/high, 1st12/2nd12/3rd12",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "wager",
				Description: "Amount of explosions to wager ('all' for everything)",
				Required:    true,
			},
		},
	}
}

// Handle runs one spin: validate, reveal after a short pacing pause, then
// settle immediately.
func (h *Handler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID := i.GuildID
	userID := i.Member.User.ID

	var space, wagerStr string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "space":
			space = opt.StringValue()
		case "wager":
			wagerStr = opt.StringValue()
		}
	}

	rec := h.Ledger.GetOrDefault(guildID, userID)
	wager, err := utils.ParseBet(wagerStr, rec.Explosions)
	if err != nil {
		utils.RespondError(s, i, fmt.Sprintf("Invalid wager: %v", err))
		return
	}
	if err := utils.ValidateWager(wager, rec.Explosions); err != nil {
		utils.RespondError(s, i, err.Error())
		return
	}
	if _, _, err := Resolve(space, 0); err != nil {
		utils.RespondError(s, i, err.Error())
		return
	}

	if err := utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed("🎡 Roulette", "The wheel is spinning...", 0), nil, false); err != nil {
		log.Warnf("roulette: failed to respond: %v", err)
		return
	}

	go h.resolveSpin(s, i, space, wager)
}

func (h *Handler) resolveSpin(s *discordgo.Session, i *discordgo.InteractionCreate, space string, wager int64) {
	time.Sleep(2 * time.Second)

	h.mu.Lock()
	n := h.rng.Intn(37)
	h.mu.Unlock()

	mult, win, _ := Resolve(space, n)

	guildID := i.GuildID
	userID := i.Member.User.ID
	var (
		rec   = h.Ledger.GetOrDefault(guildID, userID)
		delta int64
		err   error
	)
	if win {
		delta = wager * mult
		rec, err = h.Ledger.Adjust(guildID, userID, utils.FieldExplosions, utils.OpAdd, delta)
	} else {
		delta = -wager
		rec, err = h.Ledger.Adjust(guildID, userID, utils.FieldExplosions, utils.OpRemove, wager)
	}
	if err != nil {
		log.Errorf("roulette: failed to settle wager for %s: %v", userID, err)
	}

	desc := fmt.Sprintf("The ball lands on **%d %s**.", n, Color(n))
	color := 0xFF0000
	if win {
		desc += fmt.Sprintf("\nYour bet on **%s** pays %d:1 — **+%d explosions**.", space, mult, delta)
		color = 0x00FF00
	} else {
		desc += fmt.Sprintf("\nYour bet on **%s** loses — **%d explosions**.", space, delta)
	}
	desc += fmt.Sprintf("\nBalance: **%d**", rec.Explosions)

	if err := utils.EditOriginalInteraction(s, i, utils.CreateBrandedEmbed("🎡 Roulette", desc, color), nil); err != nil {
		log.Warnf("roulette: failed to post result: %v", err)
	}
}
