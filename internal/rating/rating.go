package rating

import (
	"math"

	"github.com/rocketscienceinc/president-backend/internal/entity"
)

const K = 32

// Ranking is one line of the final standings; Rank 1 is the best.
type Ranking struct {
	PlayerID string      `json:"playerId"`
	Handle   string      `json:"handle"`
	Role     entity.Role `json:"role"`
	Rank     int         `json:"rank"`
}

// EloDelta returns round(K * (actual - expected)) for a single pairing.
func EloDelta(playerRating, opponentRating int, won bool) int {
	expected := 1 / (1 + math.Pow(10, float64(opponentRating-playerRating)/400))

	actual := 0.0
	if won {
		actual = 1
	}

	return int(math.Round(K * (actual - expected)))
}

// FinalRankings lists the finishers of the last round in finishing order.
// Spectators that were never dealt in are left out.
func FinalRankings(state *entity.GameState) []Ranking {
	if state.Round == nil {
		return []Ranking{}
	}

	rankings := make([]Ranking, 0, len(state.Round.FinishOrder))
	for i, id := range state.Round.FinishOrder {
		player, _ := state.Player(id)
		if player == nil {
			continue
		}

		rankings = append(rankings, Ranking{
			PlayerID: player.ID,
			Handle:   player.Handle,
			Role:     player.Role,
			Rank:     i + 1,
		})
	}

	return rankings
}

// MatchDeltas aggregates a multiplayer result as the rounded mean of the
// pairwise deltas of each player against every other finisher. A better rank
// wins the pairing. Missing ratings default to initial.
func MatchDeltas(rankings []Ranking, ratings map[string]int, initial int) map[string]int {
	deltas := make(map[string]int, len(rankings))
	if len(rankings) < 2 {
		for _, r := range rankings {
			deltas[r.PlayerID] = 0
		}
		return deltas
	}

	ratingOf := func(id string) int {
		if value, ok := ratings[id]; ok {
			return value
		}
		return initial
	}

	for _, player := range rankings {
		sum := 0
		for _, opponent := range rankings {
			if opponent.PlayerID == player.PlayerID {
				continue
			}
			sum += EloDelta(ratingOf(player.PlayerID), ratingOf(opponent.PlayerID), player.Rank < opponent.Rank)
		}
		deltas[player.PlayerID] = int(math.Round(float64(sum) / float64(len(rankings)-1)))
	}

	return deltas
}
