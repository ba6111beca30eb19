package entity

import (
	"fmt"
	"sort"
)

type Rank string

type Suit string

const (
	Rank2  Rank = "2"
	Rank3  Rank = "3"
	Rank4  Rank = "4"
	Rank5  Rank = "5"
	Rank6  Rank = "6"
	Rank7  Rank = "7"
	Rank8  Rank = "8"
	Rank9  Rank = "9"
	Rank10 Rank = "10"
	RankJ  Rank = "J"
	RankQ  Rank = "Q"
	RankK  Rank = "K"
	RankA  Rank = "A"
)

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var (
	// Ranks is ordered from lowest to highest.
	Ranks = []Rank{Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA}

	// Suits order is only used to sort a hand for display.
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
)

// Card is an immutable playing card; two cards are equal when rank and suit match.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// Value returns the comparison value of the rank, 0 for "2" up to 12 for "A", or -1 if unknown.
func (r Rank) Value() int {
	for i, rank := range Ranks {
		if rank == r {
			return i
		}
	}

	return -1
}

func (r Rank) IsValid() bool {
	return r.Value() >= 0
}

func (s Suit) order() int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}

	return -1
}

func (s Suit) IsValid() bool {
	return s.order() >= 0
}

func (c Card) IsValid() bool {
	return c.Rank.IsValid() && c.Suit.IsValid()
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// SortHand orders cards by rank, then by suit.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		ri, rj := cards[i].Rank.Value(), cards[j].Rank.Value()
		if ri != rj {
			return ri < rj
		}
		return cards[i].Suit.order() < cards[j].Suit.order()
	})
}
