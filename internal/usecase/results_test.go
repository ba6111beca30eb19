package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/rating"
	"github.com/rocketscienceinc/president-backend/internal/repository"
)

var errDatabaseDown = errors.New("database down")

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) GetRatings(ctx context.Context, playerIDs []string) (map[string]int, error) {
	args := m.Called(ctx, playerIDs)
	ratings, _ := args.Get(0).(map[string]int)
	return ratings, args.Error(1)
}

func (m *mockMatchRepo) SaveMatch(ctx context.Context, match *repository.Match, initialRating int) error {
	return m.Called(ctx, match, initialRating).Error(0)
}

func newResultsUseCase(repo *mockMatchRepo) *ResultsUseCase {
	return NewResultsUseCase(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, 1000)
}

func standings() []rating.Ranking {
	return []rating.Ranking{
		{PlayerID: "a", Handle: "ann", Role: entity.RolePresident, Rank: 1},
		{PlayerID: "b", Handle: "bob", Role: entity.RoleCitizen, Rank: 2},
		{PlayerID: "c", Handle: "cat", Role: entity.RoleScum, Rank: 3},
	}
}

func TestResultsUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the match with Elo deltas", func(t *testing.T) {
		// Given: three unrated players
		repo := &mockMatchRepo{}
		repo.On("GetRatings", mock.Anything, []string{"a", "b", "c"}).Return(map[string]int{}, nil).Once()

		var saved *repository.Match
		repo.On("SaveMatch", mock.Anything, mock.AnythingOfType("*repository.Match"), 1000).
			Run(func(args mock.Arguments) {
				saved, _ = args.Get(1).(*repository.Match)
			}).
			Return(nil).
			Once()

		// When: the standings are recorded
		err := newResultsUseCase(repo).Record(ctx, "ROOM", standings())

		// Then: one match row per player carries its delta
		require.NoError(t, err)
		repo.AssertExpectations(t)
		require.NotNil(t, saved)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "ROOM", saved.RoomCode)
		require.Len(t, saved.Players, 3)

		deltas := map[string]int{}
		for _, player := range saved.Players {
			assert.Equal(t, saved.ID, player.MatchID)
			deltas[player.PlayerID] = player.EloDelta
		}
		assert.Equal(t, map[string]int{"a": 16, "b": 0, "c": -16}, deltas)
		assert.Equal(t, "president", saved.Players[0].Role)
	})

	t.Run("Nothing to record for empty standings", func(t *testing.T) {
		repo := &mockMatchRepo{}

		err := newResultsUseCase(repo).Record(ctx, "ROOM", nil)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetRatings", mock.Anything, mock.Anything)
	})

	t.Run("Rating lookup failure is returned", func(t *testing.T) {
		// Given: a repository that cannot read ratings
		repo := &mockMatchRepo{}
		repo.On("GetRatings", mock.Anything, mock.Anything).Return(nil, errDatabaseDown).Once()

		// When: the standings are recorded
		err := newResultsUseCase(repo).Record(ctx, "ROOM", standings())

		// Then: the error surfaces and nothing is saved
		require.ErrorIs(t, err, errDatabaseDown)
		repo.AssertNotCalled(t, "SaveMatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Save failure is returned", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("GetRatings", mock.Anything, mock.Anything).Return(map[string]int{"a": 1200}, nil).Once()
		repo.On("SaveMatch", mock.Anything, mock.Anything, 1000).Return(errDatabaseDown).Once()

		err := newResultsUseCase(repo).Record(ctx, "ROOM", standings())

		require.ErrorIs(t, err, errDatabaseDown)
	})
}
