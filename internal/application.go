package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/president-backend/internal/config"
	"github.com/rocketscienceinc/president-backend/internal/president"
	"github.com/rocketscienceinc/president-backend/internal/repository"
	"github.com/rocketscienceinc/president-backend/internal/repository/storage"
	"github.com/rocketscienceinc/president-backend/internal/room"
	"github.com/rocketscienceinc/president-backend/internal/service"
	"github.com/rocketscienceinc/president-backend/internal/usecase"
	"github.com/rocketscienceinc/president-backend/transport/rest"
	"github.com/rocketscienceinc/president-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	results, closeResults, err := initResults(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeResults()

	roomRepo := repository.NewRoomRepository(redisStorage.Connection, conf.Room.SnapshotTTL)
	authService := service.NewAuthService(conf.JWTSecret)

	manager := room.NewManager(logger, room.Options{
		Settings: president.Settings{
			TwoDecks:      conf.Game.TwoDecks,
			RoundsPerGame: conf.Game.RoundsPerGame,
			MaxPlayers:    conf.Game.MaxPlayers,
		},
		TurnTimeout: conf.Game.TurnTimeout,
		IdleTTL:     conf.Room.IdleTTL,
	}, roomRepo, results)
	defer manager.Shutdown()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, manager)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, manager, authService, conf.Room.SendBuffer)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// initResults connects the match results database. Without a DSN finished
// games are not recorded and the returned sink is nil.
func initResults(ctx context.Context, logger *slog.Logger, conf *config.Config) (room.ResultsSink, func(), error) {
	log := logger.With("component", "app")

	if conf.Postgres.DSN == "" {
		log.Warn("postgres dsn is empty, match results will not be stored")
		return nil, func() {}, nil
	}

	postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
	}

	closeStorage := func() {
		if closeErr := postgresStorage.Close(); closeErr != nil {
			log.Error("could not close postgres storage", "error", closeErr)
		}
	}

	matchRepo := repository.NewMatchRepository(postgresStorage.Connection)
	if err = matchRepo.Migrate(ctx); err != nil {
		closeStorage()
		return nil, nil, fmt.Errorf("could not migrate match tables: %w", err)
	}

	return usecase.NewResultsUseCase(logger, matchRepo, conf.Rating.Initial), closeStorage, nil
}
