// Package client is the session SDK of the gameroom platform: a thin,
// non-validating renderer of coordinator-declared truth. One Session owns
// one live socket to one room; the board evaluator never runs here in the
// online path, because the remote authority is trusted unconditionally.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/playhall/gameroom/internal/protocol"
)

var (
	ErrAlreadyInitialized = errors.New("session is already initialized")
	ErrNotInitialized     = errors.New("session is not initialized")
)

// Config carries everything needed to reach a room: the socket base URL
// (ws:// or wss://), the guest token, the local player id and the match to
// join.
type Config struct {
	ServerURL string
	Token     string
	PlayerID  string
	MatchID   string
	GameType  string
}

// Session owns a single duplex connection to the coordination endpoint for
// one room. All state mutations happen on the read loop, so the callback
// sees snapshots in strict arrival order, exactly one per applied message.
type Session struct {
	logger   *slog.Logger
	registry *Registry
	conf     Config

	mu       sync.Mutex
	state    SessionState
	onState  StateFunc
	conn     *websocket.Conn
	writeMu  sync.Mutex
	tornDown bool
	loopDone chan struct{}
}

// NewSession - creates a disconnected session for a room. Nothing happens
// until Initialize.
func NewSession(logger *slog.Logger, registry *Registry, conf Config) *Session {
	return &Session{
		logger:   logger.With("component", "session", "roomCode", conf.MatchID),
		registry: registry,
		conf:     conf,

		state: SessionState{
			RoomCode: conf.MatchID,
			Phase:    PhaseDisconnected,
		},
	}
}

// Initialize - claims the room in the registry, opens the transport and
// sends the join_game handshake. The callback starts firing once the
// coordinator pushes its first snapshot. A second live session for the
// same room is refused with ErrRoomBusy.
func (that *Session) Initialize(ctx context.Context, onStateChange StateFunc) error {
	that.mu.Lock()
	if that.conn != nil {
		that.mu.Unlock()
		return ErrAlreadyInitialized
	}
	that.onState = onStateChange
	that.state.Phase = PhaseConnecting
	that.mu.Unlock()

	if err := that.registry.acquire(that.conf.MatchID, that); err != nil {
		that.abortConnect()
		return err
	}

	endpoint, err := that.roomURL()
	if err != nil {
		that.registry.release(that.conf.MatchID, that)
		that.abortConnect()
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil) //nolint: bodyclose // gorilla owns the response body
	if err != nil {
		that.registry.release(that.conf.MatchID, that)
		that.abortConnect()
		return fmt.Errorf("failed to open transport: %w", err)
	}

	join := protocol.JoinGame{
		MatchID:  that.conf.MatchID,
		PlayerID: that.conf.PlayerID,
		GameType: that.conf.GameType,
	}
	if err = that.write(conn, join); err != nil {
		_ = conn.Close()
		that.registry.release(that.conf.MatchID, that)
		that.abortConnect()
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	loopDone := make(chan struct{})

	that.mu.Lock()
	that.conn = conn
	that.loopDone = loopDone
	that.state.Connected = true
	that.state.Phase = PhaseWaiting
	that.mu.Unlock()

	go that.readLoop(conn, loopDone)

	that.logger.Info("session connected")

	return nil
}

// abortConnect - rolls a failed Initialize back to disconnected.
func (that *Session) abortConnect() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state.Phase = PhaseDisconnected
	that.onState = nil
}

// GetState - returns the current snapshot.
func (that *Session) GetState() SessionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.clone()
}

// SubmitMove - sends a move intent. Only meaningful while the game is in
// progress and it is the local player's turn; otherwise the call is a
// silent no-op, since the coordinator is the final arbiter anyway and a
// doomed intent is not worth a round trip.
func (that *Session) SubmitMove(move protocol.Move) {
	that.mu.Lock()
	conn := that.conn
	allowed := conn != nil && !that.tornDown && that.state.IsMyTurn()
	that.mu.Unlock()

	if !allowed {
		that.logger.Debug("move suppressed, not our turn or game not in progress")
		return
	}

	if err := that.write(conn, move); err != nil {
		that.logger.Error("failed to send move", "error", err)
	}
}

// RequestPlayAgain - sends a rematch intent, valid only once the game has
// finished. The session returns to waiting when the coordinator confirms.
func (that *Session) RequestPlayAgain() {
	that.mu.Lock()
	conn := that.conn
	allowed := conn != nil && !that.tornDown && that.state.Phase == PhaseFinished
	that.mu.Unlock()

	if !allowed {
		that.logger.Debug("rematch suppressed, game is not finished")
		return
	}

	if err := that.write(conn, protocol.PlayAgain{}); err != nil {
		that.logger.Error("failed to send rematch request", "error", err)
	}
}

// Teardown - closes the transport and unregisters the room claim. It is
// idempotent, safe from any phase, and returns only after the read loop
// has exited, so no callback fires afterwards.
func (that *Session) Teardown() {
	that.mu.Lock()
	if that.tornDown {
		loopDone := that.loopDone
		that.mu.Unlock()
		if loopDone != nil {
			<-loopDone
		}
		return
	}
	that.tornDown = true
	that.state.Connected = false
	that.state.Phase = PhaseDisconnected
	conn := that.conn
	loopDone := that.loopDone
	that.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	if loopDone != nil {
		<-loopDone
	}

	that.registry.release(that.conf.MatchID, that)

	that.logger.Info("session torn down")
}

// readLoop - the single inbound path. Each applied message mutates the
// state and fires the callback exactly once, in arrival order.
func (that *Session) readLoop(conn *websocket.Conn, loopDone chan struct{}) {
	defer close(loopDone)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			that.handleTransportClosed(err)
			return
		}

		msg, err := protocol.DecodeServer(raw)
		if err != nil {
			// protocol errors are logged and dropped; the session survives
			that.logger.Warn("dropping unrecognized message", "error", err)
			continue
		}

		switch m := msg.(type) {
		case protocol.GameState:
			that.applySnapshot(m)
		case protocol.GameFinished:
			that.applyFinished(m)
		case protocol.ErrorMessage:
			that.logger.Warn("coordinator reported an error", "code", m.Code, "message", m.Message)
		}
	}
}

// handleTransportClosed - marks the session disconnected. No automatic
// reconnect is attempted; the player re-enters the room instead.
func (that *Session) handleTransportClosed(cause error) {
	that.mu.Lock()
	if that.tornDown {
		that.mu.Unlock()
		return
	}
	that.state.Connected = false
	that.state.Phase = PhaseDisconnected
	snapshot := that.state.clone()
	callback := that.onState
	that.mu.Unlock()

	that.registry.release(that.conf.MatchID, that)

	that.logger.Info("transport closed", "error", cause)

	if callback != nil {
		callback(snapshot)
	}
}

func (that *Session) applySnapshot(msg protocol.GameState) {
	that.mu.Lock()
	if that.tornDown {
		that.mu.Unlock()
		return
	}
	that.state.Board = msg.Board
	that.state.Turn = msg.CurrentPlayer
	that.state.Phase = phaseForStatus(msg.GameStatus)
	if msg.RoomCode != "" {
		that.state.RoomCode = msg.RoomCode
	}
	if msg.PlayerColor != "" {
		that.state.PlayerMark = msg.PlayerColor
		that.state.OpponentMark = msg.OpponentColor
	}
	if that.state.Phase != PhaseFinished {
		that.state.Winner = ""
		that.state.WinningCells = nil
	}
	snapshot := that.state.clone()
	callback := that.onState
	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

func (that *Session) applyFinished(msg protocol.GameFinished) {
	that.mu.Lock()
	if that.tornDown {
		that.mu.Unlock()
		return
	}
	that.state.Board = msg.Board
	that.state.Turn = ""
	that.state.Phase = PhaseFinished
	that.state.Winner = msg.Winner
	that.state.WinningCells = msg.WinningCells
	snapshot := that.state.clone()
	callback := that.onState
	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

func (that *Session) write(conn *websocket.Conn, msg protocol.ClientMessage) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

// roomURL - builds the socket endpoint with the room path-embedded and the
// auth token as a query parameter.
func (that *Session) roomURL() (string, error) {
	base, err := url.Parse(that.conf.ServerURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}

	endpoint := base.JoinPath("rooms", that.conf.MatchID)
	query := endpoint.Query()
	query.Set("token", that.conf.Token)
	endpoint.RawQuery = query.Encode()

	return endpoint.String(), nil
}
