package client

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/playhall/gameroom/internal/board"
	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/protocol"
)

// OfflineSession is the non-networked variant of a session: two players
// share one seat and the board evaluator runs locally after each
// placement. It drives the same SessionState callback contract as the
// online Session, so UIs render both identically.
type OfflineSession struct {
	logger  *slog.Logger
	onState StateFunc

	mu   sync.Mutex
	room *entity.Room
}

// NewOfflineSession - starts a local game of the given variant. The game
// is immediately in progress; there is no opponent to wait for.
func NewOfflineSession(logger *slog.Logger, gameType string, onStateChange StateFunc) (*OfflineSession, error) {
	room, err := entity.NewRoom("local", gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to start offline game: %w", err)
	}

	room.Players = []*entity.Player{
		{ID: "local-x", Mark: entity.MarkX},
		{ID: "local-o", Mark: entity.MarkO},
	}
	room.Status = entity.StatusOngoing

	return &OfflineSession{
		logger:  logger.With("component", "offline-session", "gameType", gameType),
		onState: onStateChange,
		room:    room,
	}, nil
}

// GetState - returns the current snapshot. PlayerMark tracks whoever moves
// next, since both marks are local.
func (that *OfflineSession) GetState() SessionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

// SubmitMove - validates and applies a move for the mark whose turn it is,
// then runs the evaluator. Invalid intents are silent no-ops, mirroring
// the online client.
func (that *OfflineSession) SubmitMove(move protocol.Move) {
	that.mu.Lock()

	rules := that.room.Rules()
	mark := that.room.Turn

	var err error
	switch {
	case rules.Gravity && move.Column != nil:
		_, err = that.room.DropPiece(mark, *move.Column)
	case !rules.Gravity && move.Position != nil:
		err = that.room.PlaceMark(mark, board.Cell{Row: move.Position.Y, Col: move.Position.X})
	default:
		err = fmt.Errorf("move payload does not match the game variant")
	}

	if err != nil {
		that.mu.Unlock()
		that.logger.Debug("move suppressed", "error", err)
		return
	}

	snapshot := that.snapshot()
	callback := that.onState
	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// RequestPlayAgain - resets the finished board for a rematch; a no-op
// while the game is still running.
func (that *OfflineSession) RequestPlayAgain() {
	that.mu.Lock()

	if !that.room.IsFinished() {
		that.mu.Unlock()
		that.logger.Debug("rematch suppressed, game is not finished")
		return
	}

	that.room.ResetForRematch()

	snapshot := that.snapshot()
	callback := that.onState
	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

func (that *OfflineSession) snapshot() SessionState {
	state := SessionState{
		RoomCode:     that.room.ID,
		Board:        that.room.Board.Clone(),
		Turn:         that.room.Turn,
		Phase:        phaseForStatus(that.room.Status),
		Connected:    false,
		Winner:       that.room.Winner,
		WinningCells: append([]board.Cell(nil), that.room.WinningCells...),
		PlayerMark:   that.room.Turn,
	}
	if state.PlayerMark != "" {
		state.OpponentMark = entity.OppositeMark(state.PlayerMark)
	}

	return state
}
