package entity

import (
	"errors"
	"fmt"

	"github.com/playhall/gameroom/internal/apperror"
	"github.com/playhall/gameroom/internal/board"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	GameTypeConnectFour = "connect4"
	GameTypeTicTacToe   = "tictactoe"
)

var (
	ErrUnknownGameType   = errors.New("unknown game type")
	ErrUnknownRoomStatus = errors.New("unknown room status")
)

// Rules fix the board geometry and win condition of a game variant.
type Rules struct {
	Rows      int
	Cols      int
	RunLength int
	Gravity   bool
}

// RulesFor - returns the rules of a game variant.
func RulesFor(gameType string) (Rules, error) {
	switch gameType {
	case GameTypeConnectFour:
		return Rules{Rows: 6, Cols: 7, RunLength: 4, Gravity: true}, nil
	case GameTypeTicTacToe:
		return Rules{Rows: 3, Cols: 3, RunLength: 3, Gravity: false}, nil
	default:
		return Rules{}, fmt.Errorf("%w: %s", ErrUnknownGameType, gameType)
	}
}

// Room is one match instance hosting exactly two players. It is the
// authoritative state the coordinator persists and broadcasts.
type Room struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Board        board.Grid   `json:"board"`
	Turn         string       `json:"player_turn"`
	Status       string       `json:"status"`
	Winner       string       `json:"winner,omitempty"`
	WinningCells []board.Cell `json:"winning_cells,omitempty"`
	Players      []*Player    `json:"players,omitempty"`
	RematchVotes []string     `json:"rematch_votes,omitempty"`
}

// NewRoom - creates a waiting room with an all-empty board for the variant.
func NewRoom(id, gameType string) (*Room, error) {
	rules, err := RulesFor(gameType)
	if err != nil {
		return nil, err
	}

	return &Room{
		ID:     id,
		Type:   gameType,
		Board:  board.NewGrid(rules.Rows, rules.Cols),
		Turn:   MarkX,
		Status: StatusWaiting,
	}, nil
}

// Rules - returns the room's game rules. The room type is validated at
// creation, so an unknown type here means a corrupted record.
func (that *Room) Rules() Rules {
	rules, err := RulesFor(that.Type)
	if err != nil {
		panic(fmt.Errorf("room %s: %w", that.ID, err))
	}
	return rules
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= 2
}

// ConfirmOngoingState - returns the sentinel describing why the room cannot
// accept a move, or nil when it is in progress.
func (that *Room) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRoomStatus, that.Status)
	}
}

// PlayerByID - finds a seated player.
func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// OpponentOf - returns the other seated player, if any.
func (that *Room) OpponentOf(id string) *Player {
	for _, player := range that.Players {
		if player.ID != id {
			return player
		}
	}
	return nil
}

// DropPiece - applies a gravity move for the given mark and updates the
// room state. The landing cell is returned.
func (that *Room) DropPiece(playerMark string, column int) (board.Cell, error) {
	if err := that.confirmTurn(playerMark); err != nil {
		return board.Cell{}, err
	}

	cell, err := that.Board.Drop(column, playerMark)
	if err != nil {
		return board.Cell{}, fmt.Errorf("failed to drop piece: %w", err)
	}

	that.advanceAfterMove(playerMark)

	return cell, nil
}

// PlaceMark - applies a free-placement move for the given mark and updates
// the room state.
func (that *Room) PlaceMark(playerMark string, cell board.Cell) error {
	if err := that.confirmTurn(playerMark); err != nil {
		return err
	}

	if err := that.Board.Place(cell, playerMark); err != nil {
		return fmt.Errorf("failed to place mark: %w", err)
	}

	that.advanceAfterMove(playerMark)

	return nil
}

// AddRematchVote - records a rematch request and reports whether every
// seated player has now asked for one. Duplicate votes are collapsed.
func (that *Room) AddRematchVote(playerID string) bool {
	voted := false
	for _, id := range that.RematchVotes {
		if id == playerID {
			voted = true
			break
		}
	}

	if !voted {
		that.RematchVotes = append(that.RematchVotes, playerID)
	}

	return len(that.RematchVotes) >= len(that.Players) && that.IsFull()
}

// ResetForRematch - clears the board and result for a fresh game between the
// same players. X opens again; play starts only when the room is full.
func (that *Room) ResetForRematch() {
	rules := that.Rules()

	that.Board = board.NewGrid(rules.Rows, rules.Cols)
	that.Turn = MarkX
	that.Winner = ""
	that.WinningCells = nil
	that.RematchVotes = nil

	if that.IsFull() {
		that.Status = StatusOngoing
	} else {
		that.Status = StatusWaiting
	}
}

func (that *Room) confirmTurn(playerMark string) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// advanceAfterMove - runs the evaluator once after an accepted placement
// and either finishes the game or passes the turn.
func (that *Room) advanceAfterMove(playerMark string) {
	rules := that.Rules()

	if run, ok := board.CheckWinner(that.Board, rules.RunLength); ok {
		that.Winner = run.Mark
		that.WinningCells = run.Cells
		that.Status = StatusFinished
		that.Turn = ""
		return
	}

	if board.IsDraw(that.Board, rules.RunLength) {
		that.Winner = WinnerDraw
		that.Status = StatusFinished
		that.Turn = ""
		return
	}

	that.Turn = OppositeMark(playerMark)
}
