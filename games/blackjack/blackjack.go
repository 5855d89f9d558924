package blackjack

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// SessionTTL is the idle window before an unfinished game expires
	// with the wager refunded.
	SessionTTL = 5 * time.Minute

	dealerStandValue = 17
	sweepInterval    = 60 * time.Second
)

// Session is one member's in-progress blackjack game. Wagers settle at
// resolution, so deleting an expired session leaves the ledger untouched.
// The token is embedded in the button custom IDs, binding the buttons to
// this session and its owner.
type Session struct {
	GuildID      string
	UserID       string
	Token        string
	Wager        int64
	Deck         *utils.Deck
	Player       *utils.Hand
	Dealer       *utils.Hand
	LastActivity time.Time
}

// Expired reports whether the session passed its idle window.
func (sess *Session) Expired(now time.Time) bool {
	return now.Sub(sess.LastActivity) > SessionTTL
}

// result of a finished hand: the label shown to the player and the signed
// ledger delta.
type result struct {
	Label string
	Delta int64
}

// settleOutcome compares a stood (or busted) player hand against the
// dealer. Naturals are settled at deal time, not here.
func settleOutcome(player, dealer *utils.Hand, wager int64) result {
	if player.IsBust() {
		return result{Label: "Bust", Delta: -wager}
	}
	if dealer.IsBust() {
		return result{Label: "Dealer busts — you win", Delta: wager}
	}
	pv, dv := player.Value(), dealer.Value()
	switch {
	case pv > dv:
		return result{Label: "You win", Delta: wager}
	case pv < dv:
		return result{Label: "Dealer wins", Delta: -wager}
	default:
		return result{Label: "Push", Delta: 0}
	}
}

// Handler owns the blackjack sessions for all guilds.
type Handler struct {
	Ledger *utils.LedgerStore

	mu       sync.Mutex
	sessions map[string]*Session
	done     chan struct{}
}

// NewHandler constructs the handler and starts the expiry sweep.
func NewHandler(ledger *utils.LedgerStore) *Handler {
	h := &Handler{
		Ledger:   ledger,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go h.sweepLoop()
	return h
}

// Close stops the expiry sweep.
func (h *Handler) Close() {
	close(h.done)
}

func (h *Handler) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.sweepExpired()
		case <-h.done:
			return
		}
	}
}

// sweepExpired drops idle sessions. The wager was never escrowed, so
// deletion is the refund.
func (h *Handler) sweepExpired() {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	for key, sess := range h.sessions {
		if sess.Expired(now) {
			delete(h.sessions, key)
			log.Infof("blackjack: expired idle game for %s, wager %d refunded", key, sess.Wager)
		}
	}
}

func sessionKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// RegisterCommand returns the blackjack slash command definition.
func RegisterCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "blackjack",
		Description: "Wager your explosions on a hand of blackjack",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "wager",
				Description: "Amount of explosions to wager ('all' for everything)",
				Required:    true,
			},
		},
	}
}

// HandleCommand starts a new game.
func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID := i.GuildID
	userID := i.Member.User.ID

	rec := h.Ledger.GetOrDefault(guildID, userID)
	wagerStr := i.ApplicationCommandData().Options[0].StringValue()
	wager, err := utils.ParseBet(wagerStr, rec.Explosions)
	if err != nil {
		utils.RespondError(s, i, fmt.Sprintf("Invalid wager: %v", err))
		return
	}
	if err := utils.ValidateWager(wager, rec.Explosions); err != nil {
		utils.RespondError(s, i, err.Error())
		return
	}

	key := sessionKey(guildID, userID)

	// Check-then-create happens under one lock so two near-simultaneous
	// invocations cannot both open a session.
	h.mu.Lock()
	if existing, ok := h.sessions[key]; ok {
		if existing.Expired(time.Now()) {
			delete(h.sessions, key)
		} else {
			h.mu.Unlock()
			utils.RespondError(s, i, "You already have a blackjack game in progress.")
			return
		}
	}
	sess := &Session{
		GuildID:      guildID,
		UserID:       userID,
		Token:        uuid.NewString(),
		Wager:        wager,
		Deck:         utils.NewDeck(),
		Player:       &utils.Hand{},
		Dealer:       &utils.Hand{},
		LastActivity: time.Now(),
	}
	sess.Player.Add(sess.Deck.Deal())
	sess.Dealer.Add(sess.Deck.Deal())
	sess.Player.Add(sess.Deck.Deal())
	sess.Dealer.Add(sess.Deck.Deal())

	// A natural resolves immediately; the session is never stored.
	if sess.Player.IsBlackjack() {
		h.mu.Unlock()
		var res result
		if sess.Dealer.IsBlackjack() {
			res = result{Label: "Both have blackjack — push", Delta: 0}
		} else {
			res = result{Label: "Blackjack!", Delta: wager * 3 / 2}
		}
		h.settle(sess, res)
		if err := utils.SendInteractionResponse(s, i, h.finalEmbed(sess, res), nil, false); err != nil {
			log.Warnf("blackjack: failed to respond: %v", err)
		}
		return
	}
	h.sessions[key] = sess
	h.mu.Unlock()

	if err := utils.SendInteractionResponse(s, i, h.tableEmbed(sess), gameComponents(sess.Token), false); err != nil {
		log.Warnf("blackjack: failed to respond: %v", err)
		h.mu.Lock()
		delete(h.sessions, key)
		h.mu.Unlock()
	}
}

// actionState classifies one button press against the session map.
type actionState int

const (
	actionNoSession actionState = iota
	actionWrongGame
	actionExpired
	actionContinue
	actionFinished
)

// applyAction runs one button press as a single check-and-mutate unit:
// ownership, expiry, the hand mutation, and terminal session removal all
// happen under one lock, so two concurrent clicks cannot both settle the
// same wager. A token mismatch means the clicker pressed buttons on a
// table that is not theirs; nothing is touched.
func (h *Handler) applyAction(key, token, action string) (*Session, result, actionState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[key]
	if !ok {
		return nil, result{}, actionNoSession
	}
	if sess.Token != token {
		return nil, result{}, actionWrongGame
	}
	if sess.Expired(time.Now()) {
		delete(h.sessions, key)
		return nil, result{}, actionExpired
	}
	sess.LastActivity = time.Now()

	if action == "hit" {
		sess.Player.Add(sess.Deck.Deal())
		if !sess.Player.IsBust() && sess.Player.Value() != 21 {
			return sess, result{}, actionContinue
		}
		// Bust, or auto-stand on 21.
	}
	h.playDealer(sess)
	delete(h.sessions, key)
	return sess, settleOutcome(sess.Player, sess.Dealer, sess.Wager), actionFinished
}

// HandleInteraction handles the hit/stand buttons.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID := i.GuildID
	userID := i.Member.User.ID
	cid := i.MessageComponentData().CustomID

	var action, token string
	switch {
	case strings.HasPrefix(cid, "bj_hit_"):
		action, token = "hit", strings.TrimPrefix(cid, "bj_hit_")
	case strings.HasPrefix(cid, "bj_stand_"):
		action, token = "stand", strings.TrimPrefix(cid, "bj_stand_")
	default:
		return
	}

	sess, res, state := h.applyAction(sessionKey(guildID, userID), token, action)
	switch state {
	case actionNoSession:
		utils.RespondError(s, i, "You have no active blackjack game.")
	case actionWrongGame:
		utils.RespondError(s, i, "Those buttons belong to someone else's game.")
	case actionExpired:
		utils.RespondError(s, i, "That game expired. Your wager was refunded.")
	case actionContinue:
		if err := utils.UpdateComponentInteraction(s, i, h.tableEmbed(sess), gameComponents(sess.Token)); err != nil {
			log.Warnf("blackjack: failed to update table: %v", err)
		}
	case actionFinished:
		h.settle(sess, res)
		if err := utils.UpdateComponentInteraction(s, i, h.finalEmbed(sess, res), nil); err != nil {
			log.Warnf("blackjack: failed to post result: %v", err)
		}
	}
}

// playDealer draws for the dealer, who stands on any 17, soft or hard.
func (h *Handler) playDealer(sess *Session) {
	if sess.Player.IsBust() {
		return
	}
	for sess.Dealer.Value() < dealerStandValue {
		sess.Dealer.Add(sess.Deck.Deal())
	}
}

// settle applies the signed delta to the ledger. The session is already
// out of the map by the time this runs.
func (h *Handler) settle(sess *Session, res result) {
	var err error
	switch {
	case res.Delta > 0:
		_, err = h.Ledger.Adjust(sess.GuildID, sess.UserID, utils.FieldExplosions, utils.OpAdd, res.Delta)
	case res.Delta < 0:
		_, err = h.Ledger.Adjust(sess.GuildID, sess.UserID, utils.FieldExplosions, utils.OpRemove, -res.Delta)
	}
	if err != nil {
		log.Errorf("blackjack: failed to settle wager for %s: %v", sess.UserID, err)
	}
}

func gameComponents(token string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.CreateActionRow(
			utils.CreateButton("bj_hit_"+token, "Hit", discordgo.PrimaryButton, false, &discordgo.ComponentEmoji{Name: "🃏"}),
			utils.CreateButton("bj_stand_"+token, "Stand", discordgo.SecondaryButton, false, &discordgo.ComponentEmoji{Name: "✋"}),
		),
	}
}

func (h *Handler) tableEmbed(sess *Session) *discordgo.MessageEmbed {
	dealerShown := "🎴"
	if len(sess.Dealer.Cards) > 0 {
		dealerShown = sess.Dealer.Cards[0].String() + " 🎴"
	}
	embed := utils.CreateBrandedEmbed("🃏 Blackjack", "", 0)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "💥 Wager", Value: fmt.Sprintf("%d", sess.Wager), Inline: true},
		{Name: "Your Hand", Value: fmt.Sprintf("%s\n**Value: %d**", sess.Player.String(), sess.Player.Value()), Inline: true},
		{Name: "Dealer", Value: dealerShown, Inline: true},
	}
	return embed
}

func (h *Handler) finalEmbed(sess *Session, res result) *discordgo.MessageEmbed {
	embed := h.tableEmbed(sess)
	embed.Fields[2].Value = fmt.Sprintf("%s\n**Value: %d**", sess.Dealer.String(), sess.Dealer.Value())

	resultText := res.Label
	switch {
	case res.Delta > 0:
		resultText += fmt.Sprintf("\n**+%d explosions**", res.Delta)
		embed.Color = 0x00FF00
	case res.Delta < 0:
		resultText += fmt.Sprintf("\n**-%d explosions**", -res.Delta)
		embed.Color = 0xFF0000
	default:
		embed.Color = 0xFFFF00
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Result", Value: resultText,
	})
	return embed
}
