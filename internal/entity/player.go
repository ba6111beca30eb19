package entity

type Role string

const (
	RolePresident     Role = "president"
	RoleVicePresident Role = "vice_president"
	RoleCitizen       Role = "citizen"
	RoleViceScum      Role = "vice_scum"
	RoleScum          Role = "scum"
)

// Identity is the verified session identity handed over at connection time.
type Identity struct {
	PlayerID string `json:"playerId"`
	Handle   string `json:"handle"`
}

type Player struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Hand        []Card `json:"hand"`
	IsConnected bool   `json:"isConnected"`
	IsReady     bool   `json:"isReady"`
	Role        Role   `json:"role,omitempty"`
	// InRound is set for players dealt into the current round. Players who join
	// mid-round watch until the next deal.
	InRound bool `json:"inRound"`
}

func NewPlayer(id, handle string) *Player {
	return &Player{
		ID:          id,
		Handle:      handle,
		Hand:        []Card{},
		IsConnected: true,
	}
}

// IsActive reports whether the player still holds cards in the current round.
func (that *Player) IsActive() bool {
	return that.InRound && len(that.Hand) > 0
}

func (that *Player) clone() *Player {
	cp := *that
	cp.Hand = append([]Card{}, that.Hand...)
	return &cp
}
