package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/room"
)

type roomInfo interface {
	Info(ctx context.Context, code string) (room.Info, error)
}

type RoomHandler interface {
	Info(ctx *gin.Context)
}

type roomHandler struct {
	logger *slog.Logger
	rooms  roomInfo
}

func NewRoomHandler(logger *slog.Logger, rooms roomInfo) RoomHandler {
	return &roomHandler{
		logger: logger,
		rooms:  rooms,
	}
}

// Info reports the phase and roster of a live or snapshotted room.
func (that *roomHandler) Info(ctx *gin.Context) {
	log := that.logger.With("method", "Info")

	code := ctx.Param("code")

	info, err := that.rooms.Info(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}

		log.Error("failed to get room info", "room", code, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, info)
}
