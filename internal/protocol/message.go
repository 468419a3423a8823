// Package protocol defines the JSON message set spoken between the session
// client and the room coordinator. Every frame is a UTF-8 JSON envelope with
// a discriminant type field and a data payload. The set is closed: decoding
// an unknown kind yields ErrUnknownKind and the caller drops the frame.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playhall/gameroom/internal/board"
)

const (
	// client -> server
	KindJoinGame  = "join_game"
	KindMove      = "move"
	KindPlayAgain = "play_again"

	// server -> client
	KindGameState    = "game_state"
	KindGameFinished = "game_finished"
	KindError        = "error"
)

var (
	ErrUnknownKind    = errors.New("unknown message kind")
	ErrMalformedFrame = errors.New("malformed message frame")
)

// Envelope is the wire frame: a kind discriminant plus the raw payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is one of JoinGame, Move, PlayAgain.
type ClientMessage interface {
	kind() string
}

// ServerMessage is one of GameState, GameFinished, ErrorMessage.
type ServerMessage interface {
	kind() string
}

// JoinGame is the handshake sent once after the socket opens.
type JoinGame struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	GameType string `json:"game_type"`
}

// Position addresses a free-placement cell: x is the column, y is the row,
// both zero-based.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move is a move intent. Exactly one of Column (gravity variant) or
// Position (free-placement variant) is set.
type Move struct {
	Column   *int      `json:"column,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// ColumnMove - builds a gravity move intent.
func ColumnMove(column int) Move {
	return Move{Column: &column}
}

// CellMove - builds a free-placement move intent.
func CellMove(x, y int) Move {
	return Move{Position: &Position{X: x, Y: y}}
}

// PlayAgain is the rematch intent, valid only once a game has finished.
type PlayAgain struct{}

// GameState is the authoritative full snapshot pushed after every accepted
// change. PlayerColor is personalized per recipient.
type GameState struct {
	Board         board.Grid `json:"board"`
	CurrentPlayer string     `json:"currentPlayer"`
	GameStatus    string     `json:"gameStatus"`
	RoomCode      string     `json:"roomCode"`
	PlayerColor   string     `json:"playerColor"`
	OpponentColor string     `json:"opponentColor"`
}

// GameFinished carries the terminal board and the result.
type GameFinished struct {
	Board        board.Grid   `json:"board"`
	Winner       string       `json:"winner"`
	WinningCells []board.Cell `json:"winningCells"`
}

// ErrorMessage is an opaque diagnostic. Receivers log it and keep the
// session untouched.
type ErrorMessage struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (JoinGame) kind() string     { return KindJoinGame }
func (Move) kind() string         { return KindMove }
func (PlayAgain) kind() string    { return KindPlayAgain }
func (GameState) kind() string    { return KindGameState }
func (GameFinished) kind() string { return KindGameFinished }
func (ErrorMessage) kind() string { return KindError }

// Encode - wraps a typed message into its envelope frame.
func Encode(msg interface{ kind() string }) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	frame, err := json.Marshal(Envelope{Type: msg.kind(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return frame, nil
}

// DecodeClient - parses a frame sent by a session client.
func DecodeClient(raw []byte) (ClientMessage, error) {
	envelope, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch envelope.Type {
	case KindJoinGame:
		var msg JoinGame
		return msg, decodePayload(envelope, &msg)
	case KindMove:
		var msg Move
		return msg, decodePayload(envelope, &msg)
	case KindPlayAgain:
		var msg PlayAgain
		return msg, decodePayload(envelope, &msg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, envelope.Type)
	}
}

// DecodeServer - parses a frame pushed by the coordinator.
func DecodeServer(raw []byte) (ServerMessage, error) {
	envelope, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch envelope.Type {
	case KindGameState:
		var msg GameState
		return msg, decodePayload(envelope, &msg)
	case KindGameFinished:
		var msg GameFinished
		return msg, decodePayload(envelope, &msg)
	case KindError:
		var msg ErrorMessage
		return msg, decodePayload(envelope, &msg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, envelope.Type)
	}
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	return envelope, nil
}

func decodePayload(envelope Envelope, target any) error {
	if len(envelope.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("%w: %s payload: %w", ErrMalformedFrame, envelope.Type, err)
	}

	return nil
}
