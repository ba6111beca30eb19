package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/president"
	"github.com/rocketscienceinc/president-backend/internal/protocol"
	"github.com/rocketscienceinc/president-backend/internal/rating"
)

var ErrRoomClosed = errors.New("room is closed")

const (
	mailboxSize    = 64
	persistTimeout = 5 * time.Second
)

// Sender is one live client connection. Send must not block; it reports false
// when the connection cannot take the payload, after which the room closes it.
type Sender interface {
	ID() string
	Send(payload []byte) bool
	Close()
}

type SnapshotStore interface {
	Save(ctx context.Context, state *entity.GameState) error
	Load(ctx context.Context, roomCode string) (*entity.GameState, error)
	Delete(ctx context.Context, roomCode string) error
}

type ResultsSink interface {
	Record(ctx context.Context, roomCode string, rankings []rating.Ranking) error
}

type Options struct {
	Settings    president.Settings
	TurnTimeout time.Duration
	IdleTTL     time.Duration
}

// Info is a read-only summary of a room.
type Info struct {
	RoomCode    string                `json:"roomCode"`
	Phase       entity.Phase          `json:"phase"`
	RoundNumber int                   `json:"roundNumber"`
	Players     []protocol.PlayerView `json:"players"`
	Connections int                   `json:"connections"`
}

type connection struct {
	sender   Sender
	identity entity.Identity
	joined   bool
}

type (
	attachCmd struct {
		sender   Sender
		identity entity.Identity
	}
	detachCmd struct {
		connID string
	}
	inboundCmd struct {
		connID string
		msg    protocol.ClientMessage
		err    error
	}
	autoPassCmd struct {
		playerID string
		seq      int
	}
	idleCmd struct {
		seq int
	}
	infoCmd struct {
		reply chan Info
	}
)

// Room is the actor owning one room's GameState. Every mutation and every
// broadcast happens on its run goroutine, one mailbox item at a time.
type Room struct {
	logger  *slog.Logger
	code    string
	options Options
	engine  *president.Engine
	store   SnapshotStore
	results ResultsSink

	mailbox chan any
	done    chan struct{}
	stop    sync.Once
	onStop  func(*Room)

	conns   map[string]*connection
	players map[string]string
	lost    []string

	turnSeq   int
	turnTimer *time.Timer
	idleSeq   int
	idleTimer *time.Timer

	snapshots chan *entity.GameState
	// finished is set by the actor before it stops when the snapshot of a
	// finished game should be removed rather than kept.
	finished bool
	workers  sync.WaitGroup
}

func newRoom(
	logger *slog.Logger,
	state *entity.GameState,
	options Options,
	store SnapshotStore,
	results ResultsSink,
	onStop func(*Room),
) *Room {
	room := &Room{
		logger:    logger.With("component", "room", "room", state.RoomCode),
		code:      state.RoomCode,
		options:   options,
		engine:    president.NewEngine(state, options.Settings, nil),
		store:     store,
		results:   results,
		mailbox:   make(chan any, mailboxSize),
		done:      make(chan struct{}),
		conns:     make(map[string]*connection),
		players:   make(map[string]string),
		snapshots: make(chan *entity.GameState, 1),
		onStop:    onStop,
	}

	room.armIdle()
	room.armTurnTimer()

	room.workers.Add(2)
	go room.writeSnapshots()
	go room.run()

	return room
}

func (that *Room) Code() string {
	return that.code
}

// Attach registers a connection and sends it the current room_state.
func (that *Room) Attach(sender Sender, identity entity.Identity) error {
	return that.post(attachCmd{sender: sender, identity: identity})
}

// Detach is called once the connection is gone.
func (that *Room) Detach(connID string) {
	_ = that.post(detachCmd{connID: connID})
}

// Deliver decodes one inbound frame on the caller goroutine and queues it.
func (that *Room) Deliver(connID string, data []byte) error {
	msg, err := protocol.Decode(data)
	return that.post(inboundCmd{connID: connID, msg: msg, err: err})
}

func (that *Room) Info(ctx context.Context) (Info, error) {
	reply := make(chan Info, 1)
	if err := that.post(infoCmd{reply: reply}); err != nil {
		return Info{}, err
	}

	select {
	case info := <-reply:
		return info, nil
	case <-that.done:
		return Info{}, ErrRoomClosed
	case <-ctx.Done():
		return Info{}, fmt.Errorf("failed to get room info: %w", ctx.Err())
	}
}

// Stop ends the actor, closes every connection and waits for pending writes.
func (that *Room) Stop() {
	that.stop.Do(func() {
		close(that.done)
	})
	that.workers.Wait()
}

// Done is closed once the room stops accepting commands.
func (that *Room) Done() <-chan struct{} {
	return that.done
}

func (that *Room) post(cmd any) error {
	select {
	case <-that.done:
		return ErrRoomClosed
	default:
	}

	select {
	case that.mailbox <- cmd:
		return nil
	case <-that.done:
		return ErrRoomClosed
	}
}

func (that *Room) run() {
	defer that.workers.Done()

	defer func() {
		that.stopTimers()
		for id, conn := range that.conns {
			conn.sender.Close()
			delete(that.conns, id)
		}
		close(that.snapshots)
		if that.onStop != nil {
			that.onStop(that)
		}
	}()

	for {
		select {
		case <-that.done:
			return
		case cmd := <-that.mailbox:
			if that.handle(cmd) {
				that.stop.Do(func() { close(that.done) })
				return
			}
		}
	}
}

// handle processes one command to completion; it reports whether the room should stop.
func (that *Room) handle(cmd any) bool {
	switch c := cmd.(type) {
	case attachCmd:
		that.attach(c)
	case detachCmd:
		that.detach(c.connID)
	case inboundCmd:
		that.inbound(c)
	case autoPassCmd:
		if c.seq == that.turnSeq {
			that.deliver(that.engine.AutoPass(c.playerID))
		}
	case idleCmd:
		if c.seq == that.idleSeq && len(that.conns) == 0 {
			that.logger.Info("room idle, stopping")
			that.finished = that.engine.State().IsFinished()
			return true
		}
	case infoCmd:
		c.reply <- that.info()
	}

	return false
}

// attach registers the connection. A player already seated in the room is
// resumed right away and any older connection of theirs is closed; anyone else
// gets the room_state and has to send join_room.
func (that *Room) attach(c attachCmd) {
	connID := c.sender.ID()
	conn := &connection{sender: c.sender, identity: c.identity}
	that.conns[connID] = conn
	that.disarmIdle()

	that.logger.Debug("connection attached", "conn", connID, "player", c.identity.PlayerID)

	if player, _ := that.engine.State().Player(c.identity.PlayerID); player != nil {
		out, err := that.bind(connID, conn, "")
		if err == nil {
			that.deliver(out)
			return
		}
		that.logger.Error("failed to resume player", "player", c.identity.PlayerID, "error", err)
	}

	that.sendTo(connID, protocol.NewRoomState(that.engine.State(), c.identity.PlayerID))
	that.flushLost()
}

func (that *Room) detach(connID string) {
	conn, ok := that.conns[connID]
	if !ok {
		return
	}

	delete(that.conns, connID)
	that.logger.Debug("connection detached", "conn", connID, "player", conn.identity.PlayerID)

	if that.players[conn.identity.PlayerID] == connID {
		delete(that.players, conn.identity.PlayerID)
		that.deliver(that.engine.Disconnect(conn.identity.PlayerID))
	}

	if len(that.conns) == 0 {
		that.armIdle()
	}
}

func (that *Room) inbound(c inboundCmd) {
	conn, ok := that.conns[c.connID]
	if !ok {
		return
	}

	if c.err != nil {
		that.reject(c.connID, c.err)
		return
	}

	if _, ok := c.msg.(*protocol.Ping); ok {
		that.sendTo(c.connID, protocol.Pong{})
		that.flushLost()
		return
	}

	if sender := c.msg.Sender(); sender != "" && sender != conn.identity.PlayerID {
		that.reject(c.connID, apperror.ErrIdentity)
		return
	}

	playerID := conn.identity.PlayerID

	var (
		out *president.Outcome
		err error
	)

	switch msg := c.msg.(type) {
	case *protocol.JoinRoom:
		out, err = that.join(c.connID, conn, msg)
	case *protocol.LeaveRoom:
		if err = that.requireJoined(conn, c.connID); err == nil {
			out, err = that.engine.Leave(playerID)
			if err == nil {
				conn.joined = false
				delete(that.players, playerID)
			}
		}
	case *protocol.SetReady:
		if err = that.requireJoined(conn, c.connID); err == nil {
			out, err = that.engine.SetReady(playerID, msg.Ready)
		}
	case *protocol.PlayCards:
		if err = that.requireJoined(conn, c.connID); err == nil {
			out, err = that.engine.PlayCards(playerID, msg.Cards)
		}
	case *protocol.PassTurn:
		if err = that.requireJoined(conn, c.connID); err == nil {
			out, err = that.engine.PassTurn(playerID)
		}
	case *protocol.ChatMessage:
		if err = that.requireJoined(conn, c.connID); err == nil {
			out, err = that.engine.Chat(playerID, msg.Message)
		}
	default:
		err = fmt.Errorf("%w: unsupported message %T", apperror.ErrInvalidMessage, c.msg)
	}

	if err != nil {
		that.reject(c.connID, err)
		return
	}

	that.deliver(out)
}

func (that *Room) join(connID string, conn *connection, msg *protocol.JoinRoom) (*president.Outcome, error) {
	if msg.RoomCode != "" && msg.RoomCode != that.code {
		return nil, fmt.Errorf("%w: connected to room %s", apperror.ErrInvalidMessage, that.code)
	}

	return that.bind(connID, conn, msg.Handle)
}

// bind seats the connection's player and makes it their only live connection.
func (that *Room) bind(connID string, conn *connection, handle string) (*president.Outcome, error) {
	identity := conn.identity
	if identity.Handle == "" {
		identity.Handle = handle
	}

	out, err := that.engine.Join(identity)
	if err != nil {
		return nil, err
	}

	if previous, ok := that.players[identity.PlayerID]; ok && previous != connID {
		that.logger.Info("connection replaced", "player", identity.PlayerID, "old", previous, "new", connID)
		if old, found := that.conns[previous]; found {
			delete(that.conns, previous)
			old.sender.Close()
		}
	}

	that.players[identity.PlayerID] = connID
	conn.joined = true

	return out, nil
}

func (that *Room) requireJoined(conn *connection, connID string) error {
	if !conn.joined || that.players[conn.identity.PlayerID] != connID {
		return apperror.ErrNotInRoom
	}

	return nil
}

// deliver fans out an accepted outcome, then persists and re-arms timers.
func (that *Room) deliver(out *president.Outcome) {
	if out == nil || (len(out.Broadcast) == 0 && !out.SyncState) {
		return
	}

	for _, msg := range out.Broadcast {
		that.broadcast(msg)
	}

	if out.SyncState {
		that.syncState()
		that.persist()
		that.armTurnTimer()
	}

	if out.Rankings != nil {
		that.record(out.Rankings)
	}

	that.flushLost()
}

func (that *Room) reject(connID string, err error) {
	code := apperror.Code(err)
	if code == "" {
		that.logger.Error("unexpected rejection", "conn", connID, "error", err)
	}

	that.sendTo(connID, protocol.Error{Message: err.Error(), Code: code})
	that.flushLost()
}

func (that *Room) broadcast(msg protocol.ServerMessage) {
	payload, err := protocol.Encode(msg)
	if err != nil {
		that.logger.Error("failed to encode message", "type", msg.Type(), "error", err)
		return
	}

	for id, conn := range that.conns {
		if !conn.sender.Send(payload) {
			that.drop(id)
		}
	}
}

func (that *Room) syncState() {
	state := that.engine.State()
	for id, conn := range that.conns {
		that.sendTo(id, protocol.NewRoomState(state, conn.identity.PlayerID))
	}
}

func (that *Room) sendTo(connID string, msg protocol.ServerMessage) {
	conn, ok := that.conns[connID]
	if !ok {
		return
	}

	payload, err := protocol.Encode(msg)
	if err != nil {
		that.logger.Error("failed to encode message", "type", msg.Type(), "error", err)
		return
	}

	if !conn.sender.Send(payload) {
		that.drop(connID)
	}
}

// drop forgets a stale connection. The player it carried is disconnected by
// flushLost once the current fan-out is over.
func (that *Room) drop(connID string) {
	conn, ok := that.conns[connID]
	if !ok {
		return
	}

	delete(that.conns, connID)
	conn.sender.Close()
	that.logger.Debug("stale connection dropped", "conn", connID)

	if that.players[conn.identity.PlayerID] == connID {
		delete(that.players, conn.identity.PlayerID)
		that.lost = append(that.lost, conn.identity.PlayerID)
	}
}

func (that *Room) flushLost() {
	for len(that.lost) > 0 {
		playerID := that.lost[0]
		that.lost = that.lost[1:]
		that.deliver(that.engine.Disconnect(playerID))
	}

	if len(that.conns) == 0 {
		that.armIdle()
	}
}

func (that *Room) info() Info {
	return summarize(that.engine.State(), len(that.conns))
}

func summarize(state *entity.GameState, connections int) Info {
	players := make([]protocol.PlayerView, len(state.Players))
	for i, player := range state.Players {
		players[i] = protocol.NewPlayerView(player, "")
	}

	return Info{
		RoomCode:    state.RoomCode,
		Phase:       state.Phase,
		RoundNumber: state.RoundNumber,
		Players:     players,
		Connections: connections,
	}
}

func (that *Room) persist() {
	if that.store == nil {
		return
	}

	snapshot := that.engine.State().Clone()

	select {
	case <-that.snapshots:
	default:
	}
	that.snapshots <- snapshot
}

func (that *Room) writeSnapshots() {
	defer that.workers.Done()

	for snapshot := range that.snapshots {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := that.store.Save(ctx, snapshot); err != nil {
			that.logger.Error("failed to save room snapshot", "error", err)
		}
		cancel()
	}

	if that.finished && that.store != nil {
		that.deleteSnapshot()
	}
}

// deleteSnapshot runs after the last save so a finished game leaves nothing behind.
func (that *Room) deleteSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := that.store.Delete(ctx, that.code); err != nil {
		that.logger.Error("failed to delete room snapshot", "error", err)
		return
	}

	that.logger.Info("finished room snapshot deleted")
}

func (that *Room) record(rankings []rating.Ranking) {
	if that.results == nil {
		return
	}

	log := that.logger.With("method", "record")

	that.workers.Add(1)
	go func() {
		defer that.workers.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := that.results.Record(ctx, that.code, rankings); err != nil {
			log.Error("failed to record match results", "error", err)
			return
		}
		log.Info("match results recorded", "players", len(rankings))
	}()
}

func (that *Room) armTurnTimer() {
	if that.options.TurnTimeout <= 0 {
		return
	}

	that.turnSeq++
	if that.turnTimer != nil {
		that.turnTimer.Stop()
		that.turnTimer = nil
	}

	state := that.engine.State()
	current := state.CurrentPlayer()
	if !state.IsPlaying() || current == nil || current.IsConnected {
		return
	}

	cmd := autoPassCmd{playerID: current.ID, seq: that.turnSeq}
	that.turnTimer = time.AfterFunc(that.options.TurnTimeout, func() {
		_ = that.post(cmd)
	})
}

func (that *Room) armIdle() {
	if that.options.IdleTTL <= 0 || that.idleTimer != nil {
		return
	}

	that.idleSeq++
	cmd := idleCmd{seq: that.idleSeq}
	that.idleTimer = time.AfterFunc(that.options.IdleTTL, func() {
		_ = that.post(cmd)
	})
}

func (that *Room) disarmIdle() {
	if that.idleTimer == nil {
		return
	}

	that.idleTimer.Stop()
	that.idleTimer = nil
	that.idleSeq++
}

func (that *Room) stopTimers() {
	if that.turnTimer != nil {
		that.turnTimer.Stop()
	}
	if that.idleTimer != nil {
		that.idleTimer.Stop()
	}
}
