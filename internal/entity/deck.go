package entity

import "math/rand"

const DeckSize = 52

// BuildDeck returns deckCount standard 52-card sets, concatenated and unshuffled.
func BuildDeck(deckCount int) []Card {
	if deckCount < 1 {
		return []Card{}
	}

	deck := make([]Card, 0, DeckSize*deckCount)
	for i := 0; i < deckCount; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				deck = append(deck, Card{Rank: rank, Suit: suit})
			}
		}
	}

	return deck
}

// Shuffle returns a Fisher-Yates permutation of a copy of cards.
// A nil rnd falls back to the package level source.
func Shuffle(cards []Card, rnd *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)

	intn := rand.Intn //nolint: gosec // card order is not a security boundary
	if rnd != nil {
		intn = rnd.Intn
	}

	for i := len(shuffled) - 1; i > 0; i-- {
		j := intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Deal hands out cards round-robin starting with player 0, one card per player
// per pass, until no cards are left. When len(cards) is not a multiple of
// playerCount the first len(cards)%playerCount players hold one extra card.
// The leftover is therefore always empty; it is returned to keep the deck
// accounting explicit.
func Deal(cards []Card, playerCount int) ([][]Card, []Card) {
	if playerCount < 1 {
		leftover := make([]Card, len(cards))
		copy(leftover, cards)
		return nil, leftover
	}

	hands := make([][]Card, playerCount)
	for i := range hands {
		hands[i] = make([]Card, 0, len(cards)/playerCount+1)
	}

	for i, card := range cards {
		hands[i%playerCount] = append(hands[i%playerCount], card)
	}

	return hands, []Card{}
}
