package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrRoomFull         = errors.New("room already has two players")
	ErrNotInRoom        = errors.New("player is not seated in this room")
)
