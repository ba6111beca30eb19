package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/president-backend/internal/entity"
)

func TestEloDelta(t *testing.T) {
	t.Run("Equal ratings move by half of K", func(t *testing.T) {
		assert.Equal(t, 16, EloDelta(1000, 1000, true))
		assert.Equal(t, -16, EloDelta(1000, 1000, false))
	})

	t.Run("Beating a stronger opponent pays more", func(t *testing.T) {
		// Given: a 400 point gap, expected score 1/11 for the underdog
		delta := EloDelta(1000, 1400, true)

		// Then: 32 * (1 - 0.0909) rounds to 29
		assert.Equal(t, 29, delta)
		assert.Equal(t, -29, EloDelta(1400, 1000, false))
	})

	t.Run("Favourite winning gains little", func(t *testing.T) {
		assert.Equal(t, 3, EloDelta(1400, 1000, true))
	})
}

func TestFinalRankings(t *testing.T) {
	t.Run("Ranks follow finishing order and skip spectators", func(t *testing.T) {
		// Given: a finished round of three with one spectator
		state := entity.NewGameState("ROOM")
		state.Phase = entity.PhaseGameEnd
		state.Players = []*entity.Player{
			{ID: "a", Handle: "ann", Role: entity.RoleScum, InRound: true},
			{ID: "b", Handle: "bob", Role: entity.RolePresident, InRound: true},
			{ID: "c", Handle: "cid", Role: entity.RoleCitizen, InRound: true},
			{ID: "d", Handle: "dan"},
		}
		state.Round = &entity.Round{FinishOrder: []string{"b", "c", "a"}}

		// When: assembling the rankings
		rankings := FinalRankings(state)

		// Then: three ranked lines
		assert.Equal(t, []Ranking{
			{PlayerID: "b", Handle: "bob", Role: entity.RolePresident, Rank: 1},
			{PlayerID: "c", Handle: "cid", Role: entity.RoleCitizen, Rank: 2},
			{PlayerID: "a", Handle: "ann", Role: entity.RoleScum, Rank: 3},
		}, rankings)
	})

	t.Run("Lobby state has no rankings", func(t *testing.T) {
		assert.Empty(t, FinalRankings(entity.NewGameState("ROOM")))
	})
}

func TestMatchDeltas(t *testing.T) {
	t.Run("Equal ratings spread symmetrically", func(t *testing.T) {
		// Given: three fresh players
		rankings := []Ranking{
			{PlayerID: "a", Rank: 1},
			{PlayerID: "b", Rank: 2},
			{PlayerID: "c", Rank: 3},
		}

		// When: aggregating with no stored ratings
		deltas := MatchDeltas(rankings, map[string]int{}, 1000)

		// Then: winner +16, middle 0, loser -16
		require.Len(t, deltas, 3)
		assert.Equal(t, 16, deltas["a"])
		assert.Equal(t, 0, deltas["b"])
		assert.Equal(t, -16, deltas["c"])
	})

	t.Run("Stored ratings are used", func(t *testing.T) {
		// Given: the underdog wins a two player match
		rankings := []Ranking{{PlayerID: "a", Rank: 1}, {PlayerID: "b", Rank: 2}}

		// When: aggregating
		deltas := MatchDeltas(rankings, map[string]int{"a": 1000, "b": 1400}, 1000)

		// Then: the pairwise primitive is returned as is
		assert.Equal(t, 29, deltas["a"])
		assert.Equal(t, -29, deltas["b"])
	})

	t.Run("Single finisher gets zero", func(t *testing.T) {
		deltas := MatchDeltas([]Ranking{{PlayerID: "a", Rank: 1}}, nil, 1000)

		assert.Equal(t, map[string]int{"a": 0}, deltas)
	})
}
