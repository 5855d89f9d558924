package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck()
	assert.Equal(t, 52, deck.Remaining())

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		card := deck.Deal()
		assert.False(t, seen[card], "duplicate card %s", card)
		seen[card] = true
	}
	assert.Equal(t, 0, deck.Remaining())
}

func TestDealReshufflesWhenExhausted(t *testing.T) {
	deck := NewDeck()
	for i := 0; i < 52; i++ {
		deck.Deal()
	}
	card := deck.Deal()
	assert.NotEmpty(t, card.Rank)
	assert.Equal(t, 51, deck.Remaining())
}

func TestHandValueAceHandling(t *testing.T) {
	natural := &Hand{}
	natural.Add(Card{Rank: "A", Suit: "♠️"})
	natural.Add(Card{Rank: "K", Suit: "♥️"})
	assert.Equal(t, 21, natural.Value())
	assert.True(t, natural.IsBlackjack())

	soft := &Hand{}
	soft.Add(Card{Rank: "A", Suit: "♠️"})
	soft.Add(Card{Rank: "A", Suit: "♥️"})
	soft.Add(Card{Rank: "9", Suit: "♦️"})
	assert.Equal(t, 21, soft.Value())
	assert.False(t, soft.IsBlackjack())

	hard := &Hand{}
	hard.Add(Card{Rank: "A", Suit: "♠️"})
	hard.Add(Card{Rank: "K", Suit: "♥️"})
	hard.Add(Card{Rank: "Q", Suit: "♦️"})
	assert.Equal(t, 21, hard.Value())
}

func TestHandBustAfterAllDemotions(t *testing.T) {
	hand := &Hand{}
	hand.Add(Card{Rank: "A", Suit: "♠️"})
	hand.Add(Card{Rank: "K", Suit: "♥️"})
	hand.Add(Card{Rank: "Q", Suit: "♦️"})
	hand.Add(Card{Rank: "5", Suit: "♣️"})
	assert.Equal(t, 26, hand.Value())
	assert.True(t, hand.IsBust())
}

func TestHandString(t *testing.T) {
	hand := &Hand{}
	hand.Add(Card{Rank: "A", Suit: "♠️"})
	hand.Add(Card{Rank: "10", Suit: "♥️"})
	assert.Equal(t, "A♠️ 10♥️", hand.String())
}
