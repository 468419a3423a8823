package client

import (
	"github.com/playhall/gameroom/internal/board"
	"github.com/playhall/gameroom/internal/entity"
)

// Phase describes where a session is in its lifecycle.
type Phase string

const (
	PhaseDisconnected Phase = "disconnected"
	PhaseConnecting   Phase = "connecting"
	PhaseWaiting      Phase = "waiting"
	PhaseInProgress   Phase = "in-progress"
	PhaseFinished     Phase = "finished"
)

// SessionState is the immutable snapshot handed to the state-change
// callback and returned by GetState. The board is deep-copied, so holding
// on to an old snapshot is safe.
type SessionState struct {
	RoomCode     string
	Board        board.Grid
	Turn         string
	Phase        Phase
	Connected    bool
	Winner       string
	WinningCells []board.Cell
	PlayerMark   string
	OpponentMark string
}

// IsMyTurn - reports whether the local player may move right now.
func (that SessionState) IsMyTurn() bool {
	return that.Phase == PhaseInProgress && that.PlayerMark != "" && that.Turn == that.PlayerMark
}

// clone - deep-copies the snapshot so callers never share the board's
// backing arrays with the session.
func (that SessionState) clone() SessionState {
	snapshot := that
	if that.Board != nil {
		snapshot.Board = that.Board.Clone()
	}
	if that.WinningCells != nil {
		snapshot.WinningCells = append([]board.Cell(nil), that.WinningCells...)
	}

	return snapshot
}

// StateFunc receives a fresh snapshot after every applied inbound message.
type StateFunc func(SessionState)

// phaseForStatus - maps the wire gameStatus onto a session phase.
func phaseForStatus(status string) Phase {
	switch status {
	case entity.StatusWaiting:
		return PhaseWaiting
	case entity.StatusOngoing:
		return PhaseInProgress
	case entity.StatusFinished:
		return PhaseFinished
	default:
		return PhaseConnecting
	}
}
