package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
)

const attachAttempts = 3

// Manager owns the set of live rooms. Rooms share no state with each other.
type Manager struct {
	logger  *slog.Logger
	options Options
	store   SnapshotStore
	results ResultsSink

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager creates a room manager. store and results may be nil, in which
// case rooms are neither snapshotted nor recorded.
func NewManager(logger *slog.Logger, options Options, store SnapshotStore, results ResultsSink) *Manager {
	return &Manager{
		logger:  logger,
		options: options,
		store:   store,
		results: results,
		rooms:   make(map[string]*Room),
	}
}

// Attach connects sender to the room, creating or restoring the room first.
func (that *Manager) Attach(ctx context.Context, code string, sender Sender, identity entity.Identity) (*Room, error) {
	for attempt := 0; attempt < attachAttempts; attempt++ {
		room, err := that.Room(ctx, code)
		if err != nil {
			return nil, err
		}

		err = room.Attach(sender, identity)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrRoomClosed) {
			return nil, fmt.Errorf("failed to attach to room %s: %w", code, err)
		}
	}

	return nil, fmt.Errorf("failed to attach to room %s: %w", code, ErrRoomClosed)
}

// Room returns the live room for code, starting it when needed.
func (that *Manager) Room(ctx context.Context, code string) (*Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[code]; ok {
		select {
		case <-room.Done():
			delete(that.rooms, code)
		default:
			return room, nil
		}
	}

	state, err := that.restore(ctx, code)
	if err != nil {
		return nil, err
	}

	room := newRoom(that.logger, state, that.options, that.store, that.results, that.forget)
	that.rooms[code] = room

	return room, nil
}

// Info describes a room whether it is live or only snapshotted.
func (that *Manager) Info(ctx context.Context, code string) (Info, error) {
	that.mu.Lock()
	room, ok := that.rooms[code]
	that.mu.Unlock()

	if ok {
		info, err := room.Info(ctx)
		if err == nil || !errors.Is(err, ErrRoomClosed) {
			return info, err
		}
	}

	if that.store == nil {
		return Info{}, apperror.ErrNotFound
	}

	state, err := that.store.Load(ctx, code)
	if err != nil {
		return Info{}, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	return summarize(state, 0), nil
}

// Shutdown stops every live room and waits for their pending writes.
func (that *Manager) Shutdown() {
	that.mu.Lock()
	rooms := make([]*Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}
	that.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
}

func (that *Manager) restore(ctx context.Context, code string) (*entity.GameState, error) {
	log := that.logger.With("method", "restore", "room", code)

	if that.store == nil {
		return entity.NewGameState(code), nil
	}

	state, err := that.store.Load(ctx, code)
	if errors.Is(err, apperror.ErrNotFound) {
		return entity.NewGameState(code), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	for _, player := range state.Players {
		player.IsConnected = false
	}

	log.Info("room restored from snapshot", "phase", state.Phase, "players", len(state.Players))

	return state, nil
}

func (that *Manager) forget(room *Room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.rooms[room.Code()]; ok && current == room {
		delete(that.rooms, room.Code())
	}
}
