package president

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/president-backend/internal/entity"
)

func card(rank entity.Rank, suit entity.Suit) entity.Card {
	return entity.Card{Rank: rank, Suit: suit}
}

func TestIsValidSet(t *testing.T) {
	t.Run("Same rank pair is valid", func(t *testing.T) {
		assert.True(t, IsValidSet([]entity.Card{card(entity.Rank5, entity.Spades), card(entity.Rank5, entity.Hearts)}))
	})

	t.Run("Mixed ranks are invalid", func(t *testing.T) {
		assert.False(t, IsValidSet([]entity.Card{card(entity.Rank5, entity.Spades), card(entity.Rank6, entity.Hearts)}))
	})

	t.Run("Empty set is invalid", func(t *testing.T) {
		assert.False(t, IsValidSet(nil))
	})
}

func TestCanBeat(t *testing.T) {
	pile := entity.NewPile([]entity.Card{card(entity.Rank5, entity.Clubs), card(entity.Rank5, entity.Diamonds)})

	t.Run("Higher pair beats a pair", func(t *testing.T) {
		assert.True(t, CanBeat([]entity.Card{card(entity.Rank6, entity.Spades), card(entity.Rank6, entity.Hearts)}, pile))
	})

	t.Run("Wrong count does not beat", func(t *testing.T) {
		assert.False(t, CanBeat([]entity.Card{card(entity.Rank6, entity.Spades)}, pile))
	})

	t.Run("Larger multiple does not upgrade", func(t *testing.T) {
		assert.False(t, CanBeat([]entity.Card{
			card(entity.Rank6, entity.Spades), card(entity.Rank6, entity.Hearts), card(entity.Rank6, entity.Clubs),
		}, pile))
	})

	t.Run("Lower rank does not beat", func(t *testing.T) {
		assert.False(t, CanBeat([]entity.Card{card(entity.Rank4, entity.Spades), card(entity.Rank4, entity.Hearts)}, pile))
	})

	t.Run("Equal rank does not beat", func(t *testing.T) {
		assert.False(t, CanBeat([]entity.Card{card(entity.Rank5, entity.Spades), card(entity.Rank5, entity.Hearts)}, pile))
	})

	t.Run("Ten beats nine by value not by string", func(t *testing.T) {
		nines := entity.NewPile([]entity.Card{card(entity.Rank9, entity.Clubs)})

		assert.True(t, CanBeat([]entity.Card{card(entity.Rank10, entity.Spades)}, nines))
	})

	t.Run("Open trick accepts any valid set", func(t *testing.T) {
		assert.True(t, CanBeat([]entity.Card{card(entity.Rank2, entity.Spades)}, nil))
		assert.False(t, CanBeat([]entity.Card{card(entity.Rank2, entity.Spades), card(entity.Rank3, entity.Spades)}, nil))
	})
}

func TestOwnsCards(t *testing.T) {
	hand := []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.Rank7, entity.Clubs), card(entity.RankK, entity.Spades)}

	t.Run("Owned cards are accepted", func(t *testing.T) {
		assert.True(t, OwnsCards(hand, []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.Rank7, entity.Clubs)}))
	})

	t.Run("Missing card is rejected", func(t *testing.T) {
		assert.False(t, OwnsCards(hand, []entity.Card{card(entity.Rank7, entity.Spades)}))
	})

	t.Run("Duplicate request beyond holding is rejected", func(t *testing.T) {
		assert.False(t, OwnsCards(hand, []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.Rank7, entity.Hearts)}))
	})

	t.Run("Duplicate request is accepted with two decks", func(t *testing.T) {
		double := append([]entity.Card{}, hand...)
		double = append(double, card(entity.Rank7, entity.Hearts))

		assert.True(t, OwnsCards(double, []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.Rank7, entity.Hearts)}))
	})
}

func TestRemoveCards(t *testing.T) {
	t.Run("Removes one hand card per request", func(t *testing.T) {
		// Given: a hand holding two identical cards
		hand := []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.Rank7, entity.Hearts), card(entity.RankK, entity.Spades)}

		// When: removing one of them
		left := RemoveCards(hand, []entity.Card{card(entity.Rank7, entity.Hearts)})

		// Then: the copy and the king remain
		assert.Equal(t, []entity.Card{card(entity.Rank7, entity.Hearts), card(entity.RankK, entity.Spades)}, left)
		assert.Len(t, hand, 3)
	})
}

func TestAssignRoles(t *testing.T) {
	t.Run("Three finishers get president citizen scum", func(t *testing.T) {
		roles := AssignRoles([]string{"a", "b", "c"})

		assert.Equal(t, map[string]entity.Role{
			"a": entity.RolePresident,
			"b": entity.RoleCitizen,
			"c": entity.RoleScum,
		}, roles)
	})

	t.Run("Four finishers have no vice roles", func(t *testing.T) {
		roles := AssignRoles([]string{"a", "b", "c", "d"})

		assert.Equal(t, entity.RoleCitizen, roles["b"])
		assert.Equal(t, entity.RoleCitizen, roles["c"])
	})

	t.Run("Five finishers use every role", func(t *testing.T) {
		roles := AssignRoles([]string{"a", "b", "c", "d", "e"})

		assert.Equal(t, map[string]entity.Role{
			"a": entity.RolePresident,
			"b": entity.RoleVicePresident,
			"c": entity.RoleCitizen,
			"d": entity.RoleViceScum,
			"e": entity.RoleScum,
		}, roles)
	})

	t.Run("Six finishers give the sixth place citizen", func(t *testing.T) {
		// When: six players finish in order
		roles := AssignRoles([]string{"a", "b", "c", "d", "e", "f"})

		// Then: the fifth is scum and the sixth falls back to citizen
		assert.Equal(t, map[string]entity.Role{
			"a": entity.RolePresident,
			"b": entity.RoleVicePresident,
			"c": entity.RoleCitizen,
			"d": entity.RoleViceScum,
			"e": entity.RoleScum,
			"f": entity.RoleCitizen,
		}, roles)
	})

	t.Run("Seven finishers leave every place after the fifth citizen", func(t *testing.T) {
		roles := AssignRoles([]string{"a", "b", "c", "d", "e", "f", "g"})

		assert.Equal(t, entity.RoleVicePresident, roles["b"])
		assert.Equal(t, entity.RoleViceScum, roles["d"])
		assert.Equal(t, entity.RoleScum, roles["e"])
		assert.Equal(t, entity.RoleCitizen, roles["f"])
		assert.Equal(t, entity.RoleCitizen, roles["g"])
	})
}
