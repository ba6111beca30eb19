package president

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/protocol"
	"github.com/rocketscienceinc/president-backend/internal/rating"
)

const (
	MinPlayers        = 3
	DefaultMaxPlayers = 12

	// twoDeckThreshold is the connected player count above which two decks are dealt.
	twoDeckThreshold = 6
)

type Settings struct {
	TwoDecks      bool
	RoundsPerGame int
	MaxPlayers    int
}

// Outcome is what an accepted operation produced. Broadcast goes to every live
// connection in order; SyncState asks for a per-recipient room_state afterwards.
type Outcome struct {
	Broadcast []protocol.ServerMessage
	SyncState bool
	// Rankings is set when the operation ended the game.
	Rankings []rating.Ranking
}

func (that *Outcome) add(msgs ...protocol.ServerMessage) {
	that.Broadcast = append(that.Broadcast, msgs...)
}

// Engine is the only code that mutates a room's GameState. It is not safe for
// concurrent use; the room actor serializes calls. A rejected operation returns
// an error and leaves the state untouched.
type Engine struct {
	state    *entity.GameState
	settings Settings
	rnd      *rand.Rand
	now      func() time.Time
}

func NewEngine(state *entity.GameState, settings Settings, rnd *rand.Rand) *Engine {
	if settings.RoundsPerGame < 1 {
		settings.RoundsPerGame = 1
	}
	if settings.MaxPlayers < MinPlayers {
		settings.MaxPlayers = DefaultMaxPlayers
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // card order is not a security boundary
	}

	return &Engine{
		state:    state,
		settings: settings,
		rnd:      rnd,
		now:      time.Now,
	}
}

func (that *Engine) State() *entity.GameState {
	return that.state
}

// Join adds the player or marks a returning player connected. A player added
// while a round is running watches until the next deal.
func (that *Engine) Join(identity entity.Identity) (*Outcome, error) {
	out := &Outcome{SyncState: true}

	player, _ := that.state.Player(identity.PlayerID)
	if player == nil {
		if len(that.state.Players) >= that.settings.MaxPlayers {
			return nil, apperror.ErrRoomFull
		}

		player = entity.NewPlayer(identity.PlayerID, identity.Handle)
		that.state.Players = append(that.state.Players, player)

		if that.state.Round != nil {
			out.add(protocol.SystemMessage{Message: fmt.Sprintf("%s is watching until the next round", player.Handle)})
		}
	} else {
		player.IsConnected = true
		if identity.Handle != "" {
			player.Handle = identity.Handle
		}
	}

	out.Broadcast = append([]protocol.ServerMessage{
		protocol.PlayerJoined{Player: protocol.NewPlayerView(player, "")},
	}, out.Broadcast...)

	return out, nil
}

// Leave marks the player disconnected; hand and seat are kept.
func (that *Engine) Leave(playerID string) (*Outcome, error) {
	player, _ := that.state.Player(playerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}

	player.IsConnected = false

	out := &Outcome{SyncState: true}
	out.add(protocol.PlayerLeft{PlayerID: playerID})
	that.maybeStart(out)

	return out, nil
}

// Disconnect is Leave for a dropped connection. Unknown players are ignored.
func (that *Engine) Disconnect(playerID string) *Outcome {
	player, _ := that.state.Player(playerID)
	if player == nil || !player.IsConnected {
		return &Outcome{}
	}

	player.IsConnected = false

	out := &Outcome{SyncState: true}
	out.add(protocol.SystemMessage{Message: fmt.Sprintf("%s disconnected", player.Handle)})
	that.maybeStart(out)

	return out
}

func (that *Engine) SetReady(playerID string, ready bool) (*Outcome, error) {
	player, _ := that.state.Player(playerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}
	if !that.state.IsLobby() {
		return nil, apperror.ErrWrongPhase
	}

	player.IsReady = ready

	out := &Outcome{SyncState: true}
	out.add(protocol.PlayerReadyChanged{PlayerID: playerID, Ready: ready})
	that.maybeStart(out)

	return out, nil
}

func (that *Engine) maybeStart(out *Outcome) {
	if !that.state.IsLobby() {
		return
	}

	connected := that.state.ConnectedPlayers()
	if len(connected) < MinPlayers {
		return
	}

	for _, player := range connected {
		if !player.IsReady {
			return
		}
	}

	that.startRound(out)
}

// StartGame deals a new round to every connected player.
func (that *Engine) StartGame() (*Outcome, error) {
	if !that.state.IsLobby() {
		return nil, apperror.ErrWrongPhase
	}
	if len(that.state.ConnectedPlayers()) < MinPlayers {
		return nil, apperror.ErrWrongPhase
	}

	out := &Outcome{SyncState: true}
	that.startRound(out)

	return out, nil
}

func (that *Engine) startRound(out *Outcome) {
	connected := that.state.ConnectedPlayers()

	deckCount := 1
	if that.settings.TwoDecks || len(connected) > twoDeckThreshold {
		deckCount = 2
	}

	deck := entity.Shuffle(entity.BuildDeck(deckCount), that.rnd)
	hands, leftover := entity.Deal(deck, len(connected))

	for _, player := range that.state.Players {
		player.Hand = []entity.Card{}
		player.InRound = false
	}
	for i, player := range connected {
		player.Hand = hands[i]
		player.InRound = true
		entity.SortHand(player.Hand)
	}

	that.state.Phase = entity.PhasePlaying
	that.state.RoundNumber = that.state.RoundsPlayed + 1
	that.state.Round = &entity.Round{
		Passed:      map[string]bool{},
		FinishOrder: []string{},
		Deck:        leftover,
		Discard:     []entity.Card{},
		DeckCount:   deckCount,
	}
	that.state.Round.TurnIndex = that.state.NextActiveIndex(0, true)

	out.SyncState = true
	out.add(protocol.SystemMessage{Message: fmt.Sprintf("Round %d started", that.state.RoundNumber)})
	out.add(that.turnChanged())
}

func (that *Engine) checkTurn(playerID string) (*entity.Player, error) {
	player, _ := that.state.Player(playerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}
	if !that.state.IsPlaying() {
		return nil, apperror.ErrWrongPhase
	}
	if current := that.state.CurrentPlayer(); current == nil || current.ID != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	return player, nil
}

func (that *Engine) PlayCards(playerID string, cards []entity.Card) (*Outcome, error) {
	player, err := that.checkTurn(playerID)
	if err != nil {
		return nil, err
	}

	round := that.state.Round
	switch {
	case !IsValidSet(cards):
		return nil, apperror.ErrInvalidSet
	case !OwnsCards(player.Hand, cards):
		return nil, apperror.ErrCardsNotOwned
	case !CanBeat(cards, round.Pile):
		return nil, apperror.ErrCannotBeatPile
	}

	player.Hand = RemoveCards(player.Hand, cards)
	if round.Pile != nil {
		round.Discard = append(round.Discard, round.Pile.Cards...)
	}
	round.Pile = entity.NewPile(cards)
	round.Passed = map[string]bool{}
	round.LastPlayerID = playerID

	out := &Outcome{SyncState: true}
	out.add(protocol.CardsPlayed{
		PlayerID:  playerID,
		Cards:     round.Pile.Cards,
		PileRank:  round.Pile.Rank,
		PileCount: round.Pile.Count,
	})

	if len(player.Hand) == 0 {
		round.FinishOrder = append(round.FinishOrder, playerID)
		out.add(protocol.SystemMessage{Message: fmt.Sprintf("%s is out in position %d", player.Handle, len(round.FinishOrder))})

		if len(that.state.ActivePlayers()) <= 1 {
			that.endRound(out)
			return out, nil
		}
	}

	round.TurnIndex = that.state.NextActiveIndex(round.TurnIndex, false)
	out.add(that.turnChanged())

	return out, nil
}

func (that *Engine) PassTurn(playerID string) (*Outcome, error) {
	if _, err := that.checkTurn(playerID); err != nil {
		return nil, err
	}

	round := that.state.Round
	round.Passed[playerID] = true

	out := &Outcome{SyncState: true}
	out.add(protocol.TurnPassed{PlayerID: playerID})

	if round.Pile != nil && that.trickIsPassedOut() {
		round.Discard = append(round.Discard, round.Pile.Cards...)
		round.Pile = nil
		round.Passed = map[string]bool{}

		_, lastSeat := that.state.Player(round.LastPlayerID)
		round.TurnIndex = that.state.NextActiveIndex(lastSeat, true)
		out.add(that.turnChanged())

		return out, nil
	}

	round.TurnIndex = that.state.NextActiveIndex(round.TurnIndex, false)
	out.add(that.turnChanged())

	return out, nil
}

// AutoPass passes for a disconnected turn holder. It does nothing when the
// player has reconnected or the turn has moved on.
func (that *Engine) AutoPass(playerID string) *Outcome {
	current := that.state.CurrentPlayer()
	if !that.state.IsPlaying() || current == nil || current.ID != playerID || current.IsConnected {
		return &Outcome{}
	}

	out, err := that.PassTurn(playerID)
	if err != nil {
		return &Outcome{}
	}

	out.Broadcast = append([]protocol.ServerMessage{
		protocol.SystemMessage{Message: fmt.Sprintf("%s timed out and passed", current.Handle)},
	}, out.Broadcast...)

	return out
}

func (that *Engine) Chat(playerID, message string) (*Outcome, error) {
	player, _ := that.state.Player(playerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.ErrInvalidMessage
	}

	out := &Outcome{}
	out.add(protocol.Chat{
		PlayerID:  playerID,
		Handle:    player.Handle,
		Message:   message,
		Timestamp: that.now().UTC().Format(time.RFC3339),
	})

	return out, nil
}

// trickIsPassedOut reports whether every active player other than the last
// one to play has passed on the current pile.
func (that *Engine) trickIsPassedOut() bool {
	round := that.state.Round

	for _, player := range that.state.ActivePlayers() {
		if player.ID == round.LastPlayerID {
			continue
		}
		if !round.Passed[player.ID] {
			return false
		}
	}

	return true
}

func (that *Engine) endRound(out *Outcome) {
	round := that.state.Round

	for _, player := range that.state.ActivePlayers() {
		round.FinishOrder = append(round.FinishOrder, player.ID)
	}

	roles := AssignRoles(round.FinishOrder)
	for _, player := range that.state.Players {
		if role, ok := roles[player.ID]; ok {
			player.Role = role
		}
	}

	that.state.Phase = entity.PhaseRoundEnd
	that.state.RoundsPlayed++
	out.add(protocol.RoundEnd{WinnerID: round.FinishOrder[0], Roles: roles})

	if that.state.RoundsPlayed >= that.settings.RoundsPerGame {
		that.state.Phase = entity.PhaseGameEnd
		out.Rankings = rating.FinalRankings(that.state)
		out.add(protocol.GameEnd{FinalRankings: out.Rankings})
		return
	}

	that.state.Phase = entity.PhaseLobby
	that.state.RoundNumber = that.state.RoundsPlayed + 1
	that.state.Round = nil
	for _, player := range that.state.Players {
		player.Hand = []entity.Card{}
		player.IsReady = false
		player.InRound = false
	}

	out.add(protocol.SystemMessage{Message: fmt.Sprintf("Ready up for round %d", that.state.RoundNumber)})
}

func (that *Engine) turnChanged() protocol.TurnChanged {
	msg := protocol.TurnChanged{TurnIndex: that.state.Round.TurnIndex}
	if current := that.state.CurrentPlayer(); current != nil {
		msg.PlayerID = current.ID
	}

	return msg
}
