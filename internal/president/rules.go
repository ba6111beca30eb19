package president

import "github.com/rocketscienceinc/president-backend/internal/entity"

// IsValidSet reports whether cards is a non-empty set of a single rank.
func IsValidSet(cards []entity.Card) bool {
	if len(cards) == 0 {
		return false
	}

	for _, card := range cards[1:] {
		if card.Rank != cards[0].Rank {
			return false
		}
	}

	return true
}

// CanBeat reports whether cards may be played on pile. An open trick accepts
// any valid set; otherwise the count must match and the rank be strictly higher.
func CanBeat(cards []entity.Card, pile *entity.Pile) bool {
	if !IsValidSet(cards) {
		return false
	}

	if pile == nil || pile.Count == 0 {
		return true
	}

	return len(cards) == pile.Count && cards[0].Rank.Value() > pile.Rank.Value()
}

// OwnsCards reports whether every requested card is in hand. Each hand card
// covers at most one request.
func OwnsCards(hand, cards []entity.Card) bool {
	held := countCards(hand)

	for _, card := range cards {
		if held[card] == 0 {
			return false
		}
		held[card]--
	}

	return true
}

// RemoveCards returns hand without cards, one hand card per requested card.
func RemoveCards(hand, cards []entity.Card) []entity.Card {
	remove := countCards(cards)

	left := make([]entity.Card, 0, len(hand))
	for _, card := range hand {
		if remove[card] > 0 {
			remove[card]--
			continue
		}
		left = append(left, card)
	}

	return left
}

// rankedRoles are the roles of the first five finishing positions.
var rankedRoles = []entity.Role{
	entity.RolePresident,
	entity.RoleVicePresident,
	entity.RoleCitizen,
	entity.RoleViceScum,
	entity.RoleScum,
}

// AssignRoles maps a complete finishing order to roles. With five or more
// finishers the first five positions take rankedRoles in order and everyone
// after the fifth is a citizen. With fewer, first is president, last is scum
// and the rest are citizens.
func AssignRoles(finishOrder []string) map[string]entity.Role {
	roles := make(map[string]entity.Role, len(finishOrder))
	n := len(finishOrder)

	for i, id := range finishOrder {
		switch {
		case n >= len(rankedRoles) && i < len(rankedRoles):
			roles[id] = rankedRoles[i]
		case n >= len(rankedRoles):
			roles[id] = entity.RoleCitizen
		case i == 0:
			roles[id] = entity.RolePresident
		case i == n-1:
			roles[id] = entity.RoleScum
		default:
			roles[id] = entity.RoleCitizen
		}
	}

	return roles
}

func countCards(cards []entity.Card) map[entity.Card]int {
	counts := make(map[entity.Card]int, len(cards))
	for _, card := range cards {
		counts[card]++
	}

	return counts
}
