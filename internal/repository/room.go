package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
)

const roomKeyPrefix = "room:"

type RoomRepository interface {
	Save(ctx context.Context, state *entity.GameState) error
	Load(ctx context.Context, roomCode string) (*entity.GameState, error)
	Delete(ctx context.Context, roomCode string) error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository stores room snapshots as JSON. A zero ttl keeps them forever.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbRoom) Save(ctx context.Context, state *entity.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+state.RoomCode, stateJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) Load(ctx context.Context, roomCode string) (*entity.GameState, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+roomCode).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("room %s: %w", roomCode, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var state entity.GameState
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &state, nil
}

func (that *dbRoom) Delete(ctx context.Context, roomCode string) error {
	if err := that.client.Del(ctx, roomKeyPrefix+roomCode).Err(); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}
