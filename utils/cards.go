package utils

import (
	"math/rand"
	"strings"
	"time"
)

// Card represents a playing card.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// CardRanks defines blackjack values per rank; aces start at 11 and are
// demoted by Hand.Value as needed.
var CardRanks = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 10, "Q": 10, "K": 10, "A": 11,
}

// CardSuits defines the available card suits.
var CardSuits = []string{"♠️", "♥️", "♦️", "♣️"}

var cardRankOrder = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String returns the display form of a card.
func (c Card) String() string {
	return c.Rank + c.Suit
}

// Value returns the card's blackjack value.
func (c Card) Value() int {
	return CardRanks[c.Rank]
}

// IsAce checks if the card is an Ace.
func (c Card) IsAce() bool {
	return c.Rank == "A"
}

// Deck is a single 52-card deck, shuffled on creation.
type Deck struct {
	Cards []Card `json:"cards"`
	Dealt int    `json:"dealt"`
	rng   *rand.Rand
}

// NewDeck creates a shuffled single deck.
func NewDeck() *Deck {
	deck := &Deck{
		Cards: make([]Card, 0, 52),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, suit := range CardSuits {
		for _, rank := range cardRankOrder {
			deck.Cards = append(deck.Cards, Card{Rank: rank, Suit: suit})
		}
	}
	deck.Shuffle()
	return deck
}

// Shuffle shuffles the deck in place.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	d.Dealt = 0
}

// Deal deals one card, reshuffling if the deck is exhausted.
func (d *Deck) Deal() Card {
	if d.Dealt >= len(d.Cards) {
		if d.rng == nil {
			d.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		d.Shuffle()
	}
	card := d.Cards[d.Dealt]
	d.Dealt++
	return card
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.Cards) - d.Dealt
}

// Hand represents a blackjack hand.
type Hand struct {
	Cards []Card `json:"cards"`
}

// Add adds a card to the hand.
func (h *Hand) Add(card Card) {
	h.Cards = append(h.Cards, card)
}

// Value calculates the hand total with ace handling: each ace counts 11
// until the total would bust, then aces are demoted to 1 one at a time.
func (h *Hand) Value() int {
	total := 0
	aces := 0
	for _, card := range h.Cards {
		if card.IsAce() {
			aces++
		}
		total += card.Value()
	}
	for aces > 0 && total > 21 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack checks for a natural blackjack (21 with two cards).
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.Value() == 21
}

// IsBust checks if the hand exceeds 21 after all ace demotions.
func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

// String returns the display form of the hand.
func (h *Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, card := range h.Cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}
