package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
)

func TestDecode(t *testing.T) {
	t.Run("Play cards carries cards and the claimed sender", func(t *testing.T) {
		// Given: a play_cards frame
		frame := `{"type":"play_cards","playerId":"u1","cards":[{"rank":"10","suit":"hearts"},{"rank":"10","suit":"spades"}]}`

		// When: decoding
		msg, err := Decode([]byte(frame))

		// Then: a PlayCards with both cards is returned
		require.NoError(t, err)
		play, ok := msg.(*PlayCards)
		require.True(t, ok)
		assert.Equal(t, "u1", play.Sender())
		assert.Equal(t, []entity.Card{
			{Rank: entity.Rank10, Suit: entity.Hearts},
			{Rank: entity.Rank10, Suit: entity.Spades},
		}, play.Cards)
	})

	t.Run("Set ready keeps an explicit false", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"set_ready","ready":false}`))

		require.NoError(t, err)
		ready, ok := msg.(*SetReady)
		require.True(t, ok)
		assert.False(t, ready.Ready)
		assert.Empty(t, ready.Sender())
	})

	t.Run("Join room without a sender", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"join_room","roomCode":"ABCD","handle":"ann"}`))

		require.NoError(t, err)
		join, ok := msg.(*JoinRoom)
		require.True(t, ok)
		assert.Equal(t, "ABCD", join.RoomCode)
		assert.Equal(t, "ann", join.Handle)
	})

	t.Run("Malformed frames are invalid messages", func(t *testing.T) {
		frames := map[string]string{
			"not json":       `{"type":`,
			"missing type":   `{"ready":true}`,
			"unknown type":   `{"type":"start_game"}`,
			"ready missing":  `{"type":"set_ready"}`,
			"cards missing":  `{"type":"play_cards"}`,
			"unknown rank":   `{"type":"play_cards","cards":[{"rank":"1","suit":"hearts"}]}`,
			"unknown suit":   `{"type":"play_cards","cards":[{"rank":"2","suit":"stars"}]}`,
			"blank chat":     `{"type":"chat_message","message":"   "}`,
			"wrong field ty": `{"type":"set_ready","ready":"yes"}`,
		}

		for name, frame := range frames {
			t.Run(name, func(t *testing.T) {
				msg, err := Decode([]byte(frame))

				require.ErrorIs(t, err, apperror.ErrInvalidMessage)
				assert.Nil(t, msg)
			})
		}
	})
}

func TestEncode(t *testing.T) {
	t.Run("Adds the type discriminant", func(t *testing.T) {
		// When: encoding a cards_played message
		payload, err := Encode(CardsPlayed{
			PlayerID:  "u1",
			Cards:     []entity.Card{{Rank: entity.RankK, Suit: entity.Clubs}},
			PileRank:  entity.RankK,
			PileCount: 1,
		})

		// Then: the fields sit next to "type"
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(payload, &fields))
		assert.Equal(t, "cards_played", fields["type"])
		assert.Equal(t, "u1", fields["playerId"])
		assert.Equal(t, "K", fields["pileRank"])
	})

	t.Run("Empty message is just its type", func(t *testing.T) {
		payload, err := Encode(Pong{})

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"pong"}`, string(payload))
	})

	t.Run("Error omits an empty code", func(t *testing.T) {
		payload, err := Encode(Error{Message: "boom"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"error","message":"boom"}`, string(payload))
	})
}

func TestNewRoomState(t *testing.T) {
	// Given: a round where two players hold cards
	state := entity.NewGameState("ABCD")
	state.Phase = entity.PhasePlaying
	state.Players = []*entity.Player{
		{ID: "a", Handle: "ann", InRound: true, Hand: []entity.Card{{Rank: entity.Rank2, Suit: entity.Hearts}}},
		{ID: "b", Handle: "bob", InRound: true, Hand: []entity.Card{{Rank: entity.Rank3, Suit: entity.Hearts}, {Rank: entity.Rank4, Suit: entity.Hearts}}},
	}
	state.Round = &entity.Round{TurnIndex: 1, Passed: map[string]bool{}, DeckCount: 1}

	// When: building the view for a
	view := NewRoomState(state, "a")

	// Then: only a's hand is visible and b shows a count
	require.Len(t, view.Players, 2)
	assert.Len(t, view.Players[0].Hand, 1)
	assert.Nil(t, view.Players[1].Hand)
	assert.Equal(t, 2, view.Players[1].HandCount)
	assert.Equal(t, 1, view.GameState.TurnIndex)
	assert.Equal(t, entity.PhasePlaying, view.GameState.Phase)
}
