package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/protocol"
)

func TestOfflineSession_ConnectFour(t *testing.T) {
	// Given: a local gravity game collecting every snapshot
	var states []SessionState
	session, err := NewOfflineSession(testLogger(), entity.GameTypeConnectFour, func(state SessionState) {
		states = append(states, state)
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseInProgress, session.GetState().Phase)
	assert.Equal(t, entity.MarkX, session.GetState().Turn)

	// When: the players alternate drops until X stacks four in column 0
	drops := []int{0, 1, 0, 1, 0, 1, 0}
	for _, col := range drops {
		session.SubmitMove(protocol.ColumnMove(col))
	}

	// Then: one snapshot per applied move, ending in the X win
	require.Len(t, states, len(drops))
	final := states[len(states)-1]
	assert.Equal(t, PhaseFinished, final.Phase)
	assert.Equal(t, entity.MarkX, final.Winner)
	assert.Len(t, final.WinningCells, 4)
	assert.Empty(t, final.Turn)
}

func TestOfflineSession_SilentNoOps(t *testing.T) {
	t.Run("Drops a move onto an occupied cell", func(t *testing.T) {
		// Given: a game with one mark placed
		var callbacks int
		session, err := NewOfflineSession(testLogger(), entity.GameTypeTicTacToe, func(SessionState) {
			callbacks++
		})
		require.NoError(t, err)

		session.SubmitMove(protocol.CellMove(0, 0))
		require.Equal(t, 1, callbacks)

		// When: the next player targets the same cell
		session.SubmitMove(protocol.CellMove(0, 0))

		// Then: the intent is dropped without a callback
		assert.Equal(t, 1, callbacks)
		assert.Equal(t, entity.MarkO, session.GetState().Turn)
	})

	t.Run("Drops a payload of the wrong variant", func(t *testing.T) {
		var callbacks int
		session, err := NewOfflineSession(testLogger(), entity.GameTypeTicTacToe, func(SessionState) {
			callbacks++
		})
		require.NoError(t, err)

		session.SubmitMove(protocol.ColumnMove(0))

		assert.Zero(t, callbacks)
	})

	t.Run("Rejects an unknown game variant at construction", func(t *testing.T) {
		_, err := NewOfflineSession(testLogger(), "checkers", nil)

		assert.ErrorIs(t, err, entity.ErrUnknownGameType)
	})
}

func TestOfflineSession_Draw(t *testing.T) {
	// Given: a local tictactoe game played to a full board without a run
	var last SessionState
	session, err := NewOfflineSession(testLogger(), entity.GameTypeTicTacToe, func(state SessionState) {
		last = state
	})
	require.NoError(t, err)

	// X O X / X O O / O X X filled in alternating turn order
	moves := []protocol.Move{
		protocol.CellMove(0, 0), protocol.CellMove(1, 0),
		protocol.CellMove(2, 0), protocol.CellMove(1, 1),
		protocol.CellMove(0, 1), protocol.CellMove(2, 1),
		protocol.CellMove(1, 2), protocol.CellMove(0, 2),
		protocol.CellMove(2, 2),
	}
	for _, move := range moves {
		session.SubmitMove(move)
	}

	// Then: the game ends in a draw
	assert.Equal(t, PhaseFinished, last.Phase)
	assert.Equal(t, entity.WinnerDraw, last.Winner)
	assert.Empty(t, last.WinningCells)
}

func TestOfflineSession_PlayAgain(t *testing.T) {
	t.Run("Resets a finished board for a fresh game", func(t *testing.T) {
		// Given: a finished local game
		var last SessionState
		session, err := NewOfflineSession(testLogger(), entity.GameTypeConnectFour, func(state SessionState) {
			last = state
		})
		require.NoError(t, err)

		for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
			session.SubmitMove(protocol.ColumnMove(col))
		}
		require.Equal(t, PhaseFinished, last.Phase)

		// When: requesting a rematch
		session.RequestPlayAgain()

		// Then: the board is fresh and X opens again
		assert.Equal(t, PhaseInProgress, last.Phase)
		assert.Equal(t, entity.MarkX, last.Turn)
		assert.Empty(t, last.Winner)
		assert.Zero(t, last.Board.Occupied())
	})

	t.Run("Is a no-op while the game runs", func(t *testing.T) {
		var callbacks int
		session, err := NewOfflineSession(testLogger(), entity.GameTypeTicTacToe, func(SessionState) {
			callbacks++
		})
		require.NoError(t, err)

		session.RequestPlayAgain()

		assert.Zero(t, callbacks)
	})
}
