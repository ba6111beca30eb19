package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/pkg"
	"github.com/rocketscienceinc/president-backend/internal/room"
)

type roomManager interface {
	Attach(ctx context.Context, code string, sender room.Sender, identity entity.Identity) (*room.Room, error)
}

type tokenParser interface {
	ParseToken(token string) (entity.Identity, error)
}

type Server struct {
	logger     *slog.Logger
	rooms      roomManager
	auth       tokenParser
	sendBuffer int

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, rooms roomManager, auth tokenParser, sendBuffer int) *Server {
	return &Server{
		logger:     logger.With("component", "websocket"),
		rooms:      rooms,
		auth:       auth,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /room/{code}", that.handleRoom)

	return mux
}

// Start serves the socket port until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleRoom(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleRoom")

	code := req.PathValue("code")
	if code == "" {
		http.Error(writer, "room code is required", http.StatusBadRequest)
		return
	}

	identity, err := that.auth.ParseToken(bearerToken(req))
	if err != nil {
		log.Info("rejected connection", "room", code, "error", err)
		http.Error(writer, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(that.logger, pkg.NewID(), ws, that.sendBuffer)
	go conn.writePump()

	roomSession, err := that.rooms.Attach(req.Context(), code, conn, identity)
	if err != nil {
		log.Error("failed to attach connection", "room", code, "error", err)
		conn.Close()
		return
	}

	log.Info("connection established", "room", code, "player", identity.PlayerID, "conn", conn.ID())

	go conn.readPump(roomSession)
}

// bearerToken reads the token from ?token= or an Authorization: Bearer header.
func bearerToken(req *http.Request) string {
	if token := req.URL.Query().Get("token"); token != "" {
		return token
	}

	header := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
