package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/president-backend/internal/pkg"
	"github.com/rocketscienceinc/president-backend/internal/rating"
	"github.com/rocketscienceinc/president-backend/internal/repository"
)

type matchRepository interface {
	GetRatings(ctx context.Context, playerIDs []string) (map[string]int, error)
	SaveMatch(ctx context.Context, match *repository.Match, initialRating int) error
}

// ResultsUseCase turns the final standings of a finished game into a stored
// match and updated Elo ratings.
type ResultsUseCase struct {
	logger        *slog.Logger
	matchRepo     matchRepository
	initialRating int
	now           func() time.Time
}

func NewResultsUseCase(logger *slog.Logger, matchRepo matchRepository, initialRating int) *ResultsUseCase {
	return &ResultsUseCase{
		logger:        logger,
		matchRepo:     matchRepo,
		initialRating: initialRating,
		now:           time.Now,
	}
}

func (that *ResultsUseCase) Record(ctx context.Context, roomCode string, rankings []rating.Ranking) error {
	log := that.logger.With("method", "Record", "room", roomCode)

	if len(rankings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rankings))
	for _, ranking := range rankings {
		ids = append(ids, ranking.PlayerID)
	}

	ratings, err := that.matchRepo.GetRatings(ctx, ids)
	if err != nil {
		log.Error("failed to get ratings", "error", err)
		return fmt.Errorf("failed to get ratings: %w", err)
	}

	deltas := rating.MatchDeltas(rankings, ratings, that.initialRating)

	match := &repository.Match{
		ID:       pkg.NewID(),
		RoomCode: roomCode,
		PlayedAt: that.now().UTC(),
		Players:  make([]repository.MatchPlayer, 0, len(rankings)),
	}
	for _, ranking := range rankings {
		match.Players = append(match.Players, repository.MatchPlayer{
			MatchID:  match.ID,
			PlayerID: ranking.PlayerID,
			Handle:   ranking.Handle,
			Role:     string(ranking.Role),
			Rank:     ranking.Rank,
			EloDelta: deltas[ranking.PlayerID],
		})
	}

	if err = that.matchRepo.SaveMatch(ctx, match, that.initialRating); err != nil {
		log.Error("failed to save match", "error", err)
		return fmt.Errorf("failed to save match: %w", err)
	}

	log.Info("match recorded", "match", match.ID, "players", len(match.Players))

	return nil
}
