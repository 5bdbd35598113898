package card

import (
	"errors"
	"fmt"
)

var ErrNotInDeck = errors.New("more copies than the deck holds")

type List []Card

// NewDeck builds a full, unshuffled Phase 10 deck.
func NewDeck() List {
	deck := make(List, 0, DeckSize)
	for _, color := range Colors {
		for n := MinNumber; n <= MaxNumber; n++ {
			c, _ := New(color, n)
			for i := 0; i < numberCopies; i++ {
				deck = append(deck, c)
			}
		}
	}
	for i := 0; i < wildCount; i++ {
		deck = append(deck, CardWild)
	}
	for i := 0; i < skipCount; i++ {
		deck = append(deck, CardSkip)
	}
	return deck
}

// ParseList parses each code with Parse and stops at the first bad one.
func ParseList(codes []string) (List, error) {
	out := make(List, 0, len(codes))
	for _, code := range codes {
		c, err := Parse(code)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// PenaltyPoints sums the points of every card in the list.
func (ds List) PenaltyPoints() int {
	total := 0
	for _, c := range ds {
		total += c.Points()
	}
	return total
}

// CheckAgainstDeck fails when the list holds more copies of a card than a
// full deck has.
func (ds List) CheckAgainstDeck() error {
	available := make(map[Card]int, DeckSize)
	for _, c := range NewDeck() {
		available[c]++
	}
	for _, c := range ds {
		if available[c] == 0 {
			return fmt.Errorf("%w: %s", ErrNotInDeck, c)
		}
		available[c]--
	}
	return nil
}
