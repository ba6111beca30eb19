package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/rating"
)

// ServerMessage is the closed set of outbound messages.
type ServerMessage interface {
	Type() string
}

type RoomState struct {
	GameState GameView     `json:"gameState"`
	Players   []PlayerView `json:"players"`
}

type PlayerJoined struct {
	Player PlayerView `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type PlayerReadyChanged struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
}

type CardsPlayed struct {
	PlayerID  string        `json:"playerId"`
	Cards     []entity.Card `json:"cards"`
	PileRank  entity.Rank   `json:"pileRank"`
	PileCount int           `json:"pileCount"`
}

type TurnPassed struct {
	PlayerID string `json:"playerId"`
}

type TurnChanged struct {
	TurnIndex int    `json:"turnIndex"`
	PlayerID  string `json:"playerId"`
}

type RoundEnd struct {
	WinnerID string                 `json:"winnerId"`
	Roles    map[string]entity.Role `json:"roles"`
}

type GameEnd struct {
	FinalRankings []rating.Ranking `json:"finalRankings"`
}

type Chat struct {
	PlayerID  string `json:"playerId"`
	Handle    string `json:"handle"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type SystemMessage struct {
	Message string `json:"message"`
}

type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Pong struct{}

func (RoomState) Type() string          { return "room_state" }
func (PlayerJoined) Type() string       { return "player_joined" }
func (PlayerLeft) Type() string         { return "player_left" }
func (PlayerReadyChanged) Type() string { return "player_ready_changed" }
func (CardsPlayed) Type() string        { return "cards_played" }
func (TurnPassed) Type() string         { return "turn_passed" }
func (TurnChanged) Type() string        { return "turn_changed" }
func (RoundEnd) Type() string           { return "round_end" }
func (GameEnd) Type() string            { return "game_end" }
func (Chat) Type() string               { return TypeChat }
func (SystemMessage) Type() string      { return "system_message" }
func (Error) Type() string              { return "error" }
func (Pong) Type() string               { return "pong" }

// Encode renders msg as a JSON object carrying its "type" discriminant.
func Encode(msg ServerMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.Type(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err = json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", msg.Type(), err)
	}

	fields["type"] = json.RawMessage(strconv.Quote(msg.Type()))

	return json.Marshal(fields)
}
