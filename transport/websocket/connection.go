package websocket

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

type session interface {
	Deliver(connID string, data []byte) error
	Detach(connID string)
}

// Connection is one upgraded socket. Sends are queued on a bounded buffer and
// written by writePump; a full buffer makes Send report failure.
type Connection struct {
	id     string
	ws     *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newConnection(logger *slog.Logger, id string, ws *websocket.Conn, buffer int) *Connection {
	return &Connection{
		id:     id,
		ws:     ws,
		logger: logger.With("conn", id),
		send:   make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

func (that *Connection) ID() string {
	return that.id
}

// Send never blocks.
func (that *Connection) Send(data []byte) bool {
	select {
	case <-that.closed:
		return false
	default:
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *Connection) Close() {
	that.closeOnce.Do(func() {
		close(that.closed)
	})
}

func (that *Connection) readPump(room session) {
	log := that.logger.With("method", "readPump")

	defer func() {
		room.Detach(that.id)
		that.Close()
	}()

	that.ws.SetReadLimit(maxMessageSize)
	_ = that.ws.SetReadDeadline(time.Now().Add(pongWait))
	that.ws.SetPongHandler(func(string) error {
		return that.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection lost", "error", err)
			}
			return
		}

		if err = room.Deliver(that.id, data); err != nil {
			log.Info("room is gone", "error", err)
			return
		}
	}
}

func (that *Connection) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.ws.Close()
	}()

	for {
		select {
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write message", "error", err)
				that.Close()
				return
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil); err != nil {
				that.Close()
				return
			}
		case <-that.closed:
			that.flush()
			_ = that.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever was queued before Close.
func (that *Connection) flush() {
	for {
		select {
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (that *Connection) write(messageType int, data []byte) error {
	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	err := that.ws.WriteMessage(messageType, data)
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}

	return err
}
