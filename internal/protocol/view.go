package protocol

import "github.com/rocketscienceinc/president-backend/internal/entity"

// PlayerView is a player as seen by one recipient. Hand is only filled for the
// recipient's own seat.
type PlayerView struct {
	ID          string        `json:"id"`
	Handle      string        `json:"handle"`
	Hand        []entity.Card `json:"hand,omitempty"`
	HandCount   int           `json:"handCount"`
	IsConnected bool          `json:"isConnected"`
	IsReady     bool          `json:"isReady"`
	Role        entity.Role   `json:"role,omitempty"`
	InRound     bool          `json:"inRound"`
}

type GameView struct {
	RoomCode     string       `json:"roomCode"`
	Phase        entity.Phase `json:"phase"`
	RoundNumber  int          `json:"roundNumber"`
	Players      []PlayerView `json:"players"`
	Pile         *entity.Pile `json:"pile"`
	TurnIndex    int          `json:"turnIndex"`
	LastPlayerID string       `json:"lastPlayerId,omitempty"`
	FinishOrder  []string     `json:"finishOrder,omitempty"`
	DeckCount    int          `json:"deckCount,omitempty"`
}

func NewPlayerView(player *entity.Player, viewerID string) PlayerView {
	view := PlayerView{
		ID:          player.ID,
		Handle:      player.Handle,
		HandCount:   len(player.Hand),
		IsConnected: player.IsConnected,
		IsReady:     player.IsReady,
		Role:        player.Role,
		InRound:     player.InRound,
	}

	if player.ID == viewerID {
		view.Hand = append([]entity.Card{}, player.Hand...)
	}

	return view
}

// NewRoomState builds the room_state message for one recipient.
func NewRoomState(state *entity.GameState, viewerID string) RoomState {
	players := make([]PlayerView, len(state.Players))
	for i, player := range state.Players {
		players[i] = NewPlayerView(player, viewerID)
	}

	game := GameView{
		RoomCode:    state.RoomCode,
		Phase:       state.Phase,
		RoundNumber: state.RoundNumber,
		Players:     players,
	}

	if round := state.Round; round != nil {
		if round.Pile != nil {
			game.Pile = entity.NewPile(round.Pile.Cards)
		}
		game.TurnIndex = round.TurnIndex
		game.LastPlayerID = round.LastPlayerID
		game.FinishOrder = append([]string{}, round.FinishOrder...)
		game.DeckCount = round.DeckCount
	}

	return RoomState{GameState: game, Players: players}
}
