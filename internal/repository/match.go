package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Match struct {
	ID       string        `json:"id" gorm:"primaryKey"`
	RoomCode string        `json:"room_code" gorm:"index;not null"`
	PlayedAt time.Time     `json:"played_at" gorm:"not null"`
	Players  []MatchPlayer `json:"players,omitempty" gorm:"foreignKey:MatchID"`
}

type MatchPlayer struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	MatchID  string `json:"match_id" gorm:"index;not null"`
	PlayerID string `json:"player_id" gorm:"index;not null"`
	Handle   string `json:"handle" gorm:"not null"`
	Role     string `json:"role" gorm:"not null"`
	Rank     int    `json:"rank" gorm:"not null"`
	EloDelta int    `json:"elo_delta" gorm:"not null;default:0"`
}

type Rating struct {
	PlayerID  string    `json:"player_id" gorm:"primaryKey"`
	Handle    string    `json:"handle" gorm:"not null"`
	Elo       int       `json:"elo" gorm:"not null"`
	Games     int       `json:"games" gorm:"not null;default:0"`
	Wins      int       `json:"wins" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MatchRepository interface {
	Migrate(ctx context.Context) error
	GetRatings(ctx context.Context, playerIDs []string) (map[string]int, error)
	// SaveMatch stores the match with its players and applies every player's
	// EloDelta to the ratings table, all in one transaction. Players without a
	// rating start from initialRating.
	SaveMatch(ctx context.Context, match *Match, initialRating int) error
}

type dbMatch struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &dbMatch{
		db: db,
	}
}

func (that *dbMatch) Migrate(ctx context.Context) error {
	if err := that.db.WithContext(ctx).AutoMigrate(&Match{}, &MatchPlayer{}, &Rating{}); err != nil {
		return fmt.Errorf("failed to migrate match tables: %w", err)
	}

	return nil
}

func (that *dbMatch) GetRatings(ctx context.Context, playerIDs []string) (map[string]int, error) {
	ratings := make(map[string]int, len(playerIDs))
	if len(playerIDs) == 0 {
		return ratings, nil
	}

	var rows []Rating
	if err := that.db.WithContext(ctx).Where("player_id IN ?", playerIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	for _, row := range rows {
		ratings[row.PlayerID] = row.Elo
	}

	return ratings, nil
}

func (that *dbMatch) SaveMatch(ctx context.Context, match *Match, initialRating int) error {
	err := that.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}

		now := time.Now().UTC()
		for _, player := range match.Players {
			wins := 0
			if player.Rank == 1 {
				wins = 1
			}

			rating := Rating{
				PlayerID:  player.PlayerID,
				Handle:    player.Handle,
				Elo:       initialRating + player.EloDelta,
				Games:     1,
				Wins:      wins,
				UpdatedAt: now,
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "player_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"handle":     player.Handle,
					"elo":        gorm.Expr("ratings.elo + ?", player.EloDelta),
					"games":      gorm.Expr("ratings.games + 1"),
					"wins":       gorm.Expr("ratings.wins + ?", wins),
					"updated_at": now,
				}),
			}).Create(&rating).Error
			if err != nil {
				return fmt.Errorf("failed to update rating of %s: %w", player.PlayerID, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", match.ID, err)
	}

	return nil
}
