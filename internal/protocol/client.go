package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
)

const (
	TypeJoinRoom  = "join_room"
	TypeLeaveRoom = "leave_room"
	TypeSetReady  = "set_ready"
	TypePlayCards = "play_cards"
	TypePassTurn  = "pass_turn"
	TypeChat      = "chat_message"
	TypePing      = "ping"
)

// ClientMessage is the closed set of inbound messages. Only types of this
// package implement it.
type ClientMessage interface {
	// Sender is the playerId the client claims, empty when omitted.
	Sender() string
	clientMessage()
}

type envelope struct {
	PlayerID string `json:"playerId,omitempty"`
}

func (that envelope) Sender() string { return that.PlayerID }
func (envelope) clientMessage()      {}

type JoinRoom struct {
	envelope
	RoomCode string `json:"roomCode"`
	Handle   string `json:"handle"`
}

type LeaveRoom struct {
	envelope
}

type SetReady struct {
	envelope
	Ready bool `json:"ready"`
}

type PlayCards struct {
	envelope
	Cards []entity.Card `json:"cards"`
}

type PassTurn struct {
	envelope
}

type ChatMessage struct {
	envelope
	Message string `json:"message"`
	Handle  string `json:"handle"`
}

type Ping struct {
	envelope
}

// Decode parses one inbound frame. Every failure wraps apperror.ErrInvalidMessage.
func Decode(data []byte) (ClientMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMessage, err)
	}

	switch head.Type {
	case TypeJoinRoom:
		var msg JoinRoom
		return decodeInto(data, &msg, func() error { return nil })
	case TypeLeaveRoom:
		var msg LeaveRoom
		return decodeInto(data, &msg, func() error { return nil })
	case TypeSetReady:
		var msg struct {
			envelope
			Ready *bool `json:"ready"`
		}
		if _, err := decodeInto(data, &msg, func() error {
			if msg.Ready == nil {
				return fmt.Errorf("%w: ready is required", apperror.ErrInvalidMessage)
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return &SetReady{envelope: msg.envelope, Ready: *msg.Ready}, nil
	case TypePlayCards:
		var msg PlayCards
		return decodeInto(data, &msg, func() error { return validateCards(msg.Cards) })
	case TypePassTurn:
		var msg PassTurn
		return decodeInto(data, &msg, func() error { return nil })
	case TypeChat:
		var msg ChatMessage
		return decodeInto(data, &msg, func() error {
			if strings.TrimSpace(msg.Message) == "" {
				return fmt.Errorf("%w: message is empty", apperror.ErrInvalidMessage)
			}
			return nil
		})
	case TypePing:
		var msg Ping
		return decodeInto(data, &msg, func() error { return nil })
	case "":
		return nil, fmt.Errorf("%w: missing type", apperror.ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", apperror.ErrInvalidMessage, head.Type)
	}
}

func decodeInto[T ClientMessage](data []byte, msg T, validate func() error) (ClientMessage, error) {
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMessage, err)
	}

	if err := validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

func validateCards(cards []entity.Card) error {
	if cards == nil {
		return fmt.Errorf("%w: cards are required", apperror.ErrInvalidMessage)
	}

	for _, card := range cards {
		if !card.IsValid() {
			return fmt.Errorf("%w: unknown card %q/%q", apperror.ErrInvalidMessage, card.Rank, card.Suit)
		}
	}

	return nil
}
