package entity

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "round_end"
	PhaseGameEnd  Phase = "game_end"
)

// Pile is the most recent accepted play of the current trick.
type Pile struct {
	Cards []Card `json:"cards"`
	Rank  Rank   `json:"rank"`
	Count int    `json:"count"`
}

func NewPile(cards []Card) *Pile {
	pile := &Pile{
		Cards: append([]Card{}, cards...),
		Count: len(cards),
	}
	if len(cards) > 0 {
		pile.Rank = cards[0].Rank
	}

	return pile
}

// Round exists only while cards are dealt. A lobby has no round, so it has no
// pile, turn or deck either.
type Round struct {
	Pile         *Pile           `json:"pile"`
	TurnIndex    int             `json:"turnIndex"`
	Passed       map[string]bool `json:"passed"`
	LastPlayerID string          `json:"lastPlayerId,omitempty"`
	FinishOrder  []string        `json:"finishOrder"`
	Deck         []Card          `json:"deck"`
	Discard      []Card          `json:"discard"`
	DeckCount    int             `json:"deckCount"`
}

// GameState is the authoritative state of one room.
type GameState struct {
	RoomCode     string    `json:"roomCode"`
	Phase        Phase     `json:"phase"`
	Players      []*Player `json:"players"`
	RoundNumber  int       `json:"roundNumber"`
	RoundsPlayed int       `json:"roundsPlayed"`
	Round        *Round    `json:"round,omitempty"`
}

func NewGameState(roomCode string) *GameState {
	return &GameState{
		RoomCode:    roomCode,
		Phase:       PhaseLobby,
		Players:     []*Player{},
		RoundNumber: 1,
	}
}

func (that *GameState) IsLobby() bool {
	return that.Phase == PhaseLobby
}

func (that *GameState) IsPlaying() bool {
	return that.Phase == PhasePlaying
}

func (that *GameState) IsFinished() bool {
	return that.Phase == PhaseGameEnd
}

// Player returns the player with the given id and its seat index, or nil and -1.
func (that *GameState) Player(id string) (*Player, int) {
	for i, player := range that.Players {
		if player.ID == id {
			return player, i
		}
	}

	return nil, -1
}

func (that *GameState) ConnectedPlayers() []*Player {
	connected := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if player.IsConnected {
			connected = append(connected, player)
		}
	}

	return connected
}

func (that *GameState) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if player.IsActive() {
			active = append(active, player)
		}
	}

	return active
}

// CurrentPlayer returns the player holding the turn, or nil outside of a round.
func (that *GameState) CurrentPlayer() *Player {
	if that.Round == nil || that.Round.TurnIndex < 0 || that.Round.TurnIndex >= len(that.Players) {
		return nil
	}

	return that.Players[that.Round.TurnIndex]
}

// NextActiveIndex walks the seats from start, wrapping, and returns the first
// active seat. The start seat itself is checked only when inclusive is set.
func (that *GameState) NextActiveIndex(start int, inclusive bool) int {
	n := len(that.Players)
	if n == 0 {
		return -1
	}

	first := 1
	if inclusive {
		first = 0
	}

	for step := first; step <= n; step++ {
		idx := ((start+step)%n + n) % n
		if that.Players[idx].IsActive() {
			return idx
		}
	}

	return -1
}

// CardCount sums every card of the round: hands, pile, discard and undealt deck.
func (that *GameState) CardCount() int {
	total := 0
	for _, player := range that.Players {
		total += len(player.Hand)
	}

	if that.Round == nil {
		return total
	}

	if that.Round.Pile != nil {
		total += len(that.Round.Pile.Cards)
	}

	return total + len(that.Round.Discard) + len(that.Round.Deck)
}

// Clone returns a deep copy.
func (that *GameState) Clone() *GameState {
	cp := *that

	cp.Players = make([]*Player, len(that.Players))
	for i, player := range that.Players {
		cp.Players[i] = player.clone()
	}

	if that.Round != nil {
		round := *that.Round
		if that.Round.Pile != nil {
			round.Pile = NewPile(that.Round.Pile.Cards)
		}
		round.Passed = make(map[string]bool, len(that.Round.Passed))
		for id, passed := range that.Round.Passed {
			round.Passed[id] = passed
		}
		round.FinishOrder = append([]string{}, that.Round.FinishOrder...)
		round.Deck = append([]Card{}, that.Round.Deck...)
		round.Discard = append([]Card{}, that.Round.Discard...)
		cp.Round = &round
	}

	return &cp
}
