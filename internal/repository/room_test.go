package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/testing/suite"
)

func playingState(code string) *entity.GameState {
	state := entity.NewGameState(code)
	state.Phase = entity.PhasePlaying
	state.RoundsPlayed = 1
	state.RoundNumber = 2
	state.Players = []*entity.Player{
		{ID: "a", Handle: "ann", InRound: true, IsConnected: true, Role: entity.RolePresident,
			Hand: []entity.Card{{Rank: entity.Rank10, Suit: entity.Spades}}},
		{ID: "b", Handle: "bob", InRound: true, Hand: []entity.Card{}},
	}
	state.Round = &entity.Round{
		Pile:         entity.NewPile([]entity.Card{{Rank: entity.Rank9, Suit: entity.Hearts}}),
		TurnIndex:    0,
		Passed:       map[string]bool{"b": true},
		LastPlayerID: "b",
		FinishOrder:  []string{"b"},
		Deck:         []entity.Card{},
		Discard:      []entity.Card{{Rank: entity.Rank2, Suit: entity.Clubs}},
		DeckCount:    1,
	}

	return state
}

func TestRoomRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage, time.Hour)

	// Given: a room in the middle of a round
	state := playingState("ABCD")

	// When: Save is called
	err := roomRepo.Save(ctx, state)

	// Then: the snapshot is stored with the ttl
	require.NoError(t, err)
	ttl, err := st.Storage.TTL(ctx, "room:ABCD").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRoomRepository_Load(t *testing.T) {
	t.Run("Load_RoundTrip", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// Given: a saved snapshot
		state := playingState("ABCD")
		require.NoError(t, roomRepo.Save(ctx, state))

		// When: Load is called
		loaded, err := roomRepo.Load(ctx, "ABCD")

		// Then: the state comes back unchanged
		require.NoError(t, err)
		assert.Equal(t, state, loaded)
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// When: Load is called for an unknown room
		loaded, err := roomRepo.Load(ctx, "NOPE")

		// Then: ErrNotFound is returned
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, loaded)
	})
}

func TestRoomRepository_Delete(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage, 0)

	// Given: a saved snapshot
	require.NoError(t, roomRepo.Save(ctx, playingState("ABCD")))

	// When: Delete is called
	err := roomRepo.Delete(ctx, "ABCD")

	// Then: the room is gone
	require.NoError(t, err)
	_, err = roomRepo.Load(ctx, "ABCD")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
