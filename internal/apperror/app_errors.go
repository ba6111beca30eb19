package apperror

import "errors"

// Wire codes sent in the "code" field of an error message.
const (
	CodeNotYourTurn    = "not_your_turn"
	CodeInvalidSet     = "invalid_set"
	CodeCannotBeatPile = "cannot_beat_pile"
	CodeCardsNotOwned  = "cards_not_owned"
	CodeWrongPhase     = "wrong_phase"
	CodeNotInRoom      = "not_in_room"
	CodeRoomFull       = "room_full"
	CodeInvalidMessage = "invalid_message"
	CodeIdentity       = "identity_mismatch"
)

var (
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrInvalidSet     = errors.New("cards must be a non-empty set of the same rank")
	ErrCannotBeatPile = errors.New("cards do not beat the pile")
	ErrCardsNotOwned  = errors.New("cards are not in your hand")
	ErrWrongPhase     = errors.New("action not allowed in the current phase")
	ErrNotInRoom      = errors.New("player has not joined the room")
	ErrRoomFull       = errors.New("room is full")
	ErrInvalidMessage = errors.New("invalid message")
	ErrIdentity       = errors.New("player id does not match the session")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("invalid or missing token")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrInvalidSet, CodeInvalidSet},
	{ErrCannotBeatPile, CodeCannotBeatPile},
	{ErrCardsNotOwned, CodeCardsNotOwned},
	{ErrWrongPhase, CodeWrongPhase},
	{ErrNotInRoom, CodeNotInRoom},
	{ErrRoomFull, CodeRoomFull},
	{ErrInvalidMessage, CodeInvalidMessage},
	{ErrIdentity, CodeIdentity},
}

// Code returns the wire code of a rejection, or "" for errors that have none.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return ""
}
