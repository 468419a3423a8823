package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playhall/gameroom/internal/apperror"
	"github.com/playhall/gameroom/internal/board"
	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/pkg"
	"github.com/playhall/gameroom/internal/repository"
)

var (
	ErrInvalidMovePayload  = errors.New("move payload does not match the game variant")
	ErrRematchNotAvailable = errors.New("rematch can be requested only after the game finished")
)

// Move is a variant-neutral move intent: exactly one field is set.
type Move struct {
	Column   *int
	Position *board.Cell
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	ListWaiting(ctx context.Context) ([]*entity.Room, error)
}

// RoomManager is the remote authority of the session protocol: it owns the
// rooms, validates every intent against the board rules and persists the
// resulting state. Transports broadcast whatever it returns.
type RoomManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	roomRepo   roomRepo
}

func NewRoomManager(logger *slog.Logger, playerRepo playerRepo, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger: logger,

		playerRepo: playerRepo,
		roomRepo:   roomRepo,
	}
}

// GetOrCreatePlayer - resolves a player by id, registering a fresh guest
// when the id is empty or unknown.
func (that *RoomManager) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		playerID = pkg.GeneratePlayerID()
	}

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err == nil {
		return player, nil
	}

	if !errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	player = &entity.Player{ID: playerID}
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	return player, nil
}

// CreateRoom - opens a waiting room for the given variant with the creator
// seated as X.
func (that *RoomManager) CreateRoom(ctx context.Context, playerID, gameType string) (*entity.Room, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	room, err := entity.NewRoom(pkg.GenerateRoomCode(), gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	player.RoomID = room.ID
	player.Mark = entity.MarkX
	room.Players = []*entity.Player{player}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.logger.Info("room created", "roomID", room.ID, "gameType", gameType, "playerID", player.ID)

	return room, nil
}

// JoinRoom - seats a player in a room. A player already seated simply gets
// the current room back, so reconnects are idempotent. The game starts once
// both seats are taken.
func (that *RoomManager) JoinRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	if room.PlayerByID(playerID) != nil {
		return room, nil
	}

	if room.IsFull() {
		return nil, fmt.Errorf("%w: room id %s", apperror.ErrRoomFull, roomID)
	}

	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	player.RoomID = room.ID
	player.Mark = entity.MarkO
	room.Players = append(room.Players, player)

	if room.IsFull() && room.IsWaiting() {
		room.Status = entity.StatusOngoing
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.logger.Info("player joined room", "roomID", room.ID, "playerID", playerID, "status", room.Status)

	return room, nil
}

// ListWaitingRooms - returns the waiting rooms of the directory, optionally
// filtered by game variant.
func (that *RoomManager) ListWaitingRooms(ctx context.Context, gameType string) ([]*entity.Room, error) {
	rooms, err := that.roomRepo.ListWaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting rooms: %w", err)
	}

	if gameType == "" {
		return rooms, nil
	}

	filtered := make([]*entity.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Type == gameType {
			filtered = append(filtered, room)
		}
	}

	return filtered, nil
}

// GetRoom - fetches a room by id.
func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	return room, nil
}

// MakeMove - validates and applies a move intent. The room is the final
// arbiter: out-of-turn or out-of-phase intents come back as sentinel errors
// and leave the room untouched.
func (that *RoomManager) MakeMove(ctx context.Context, roomID, playerID string, move Move) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: room id %s", apperror.ErrNotInRoom, roomID)
	}

	rules := room.Rules()

	switch {
	case rules.Gravity && move.Column != nil:
		if _, err = room.DropPiece(player.Mark, *move.Column); err != nil {
			return room, fmt.Errorf("failed to make move: %w", err)
		}
	case !rules.Gravity && move.Position != nil:
		if err = room.PlaceMark(player.Mark, *move.Position); err != nil {
			return room, fmt.Errorf("failed to make move: %w", err)
		}
	default:
		return room, fmt.Errorf("%w: room type %s", ErrInvalidMovePayload, room.Type)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	if room.IsFinished() {
		that.logger.Info("game finished", "roomID", room.ID, "winner", room.Winner)
	}

	return room, nil
}

// RequestRematch - records a play-again vote. The first vote parks the room
// back in waiting; once every seated player has voted the board resets and
// play restarts.
func (that *RoomManager) RequestRematch(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	if room.PlayerByID(playerID) == nil {
		return nil, fmt.Errorf("%w: room id %s", apperror.ErrNotInRoom, roomID)
	}

	if !room.IsFinished() && !room.IsWaiting() {
		return nil, fmt.Errorf("%w: room status %s", ErrRematchNotAvailable, room.Status)
	}

	if room.AddRematchVote(playerID) {
		room.ResetForRematch()
		that.logger.Info("rematch started", "roomID", room.ID)
	} else {
		room.Status = entity.StatusWaiting
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	return room, nil
}

// LeaveRoom - handles a player dropping out. An ongoing game finishes as a
// walkover for the opponent; a waiting room with nobody left is deleted.
func (that *RoomManager) LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	player := room.PlayerByID(playerID)
	if player == nil {
		return room, nil
	}

	if room.IsOngoing() {
		room.Status = entity.StatusFinished
		room.Turn = ""
		if opponent := room.OpponentOf(playerID); opponent != nil {
			room.Winner = opponent.Mark
		}

		if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to save room: %w", err)
		}

		that.logger.Info("player left ongoing game", "roomID", room.ID, "playerID", playerID)

		return room, nil
	}

	if len(room.Players) <= 1 {
		if err = that.roomRepo.DeleteByID(ctx, room.ID); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		that.logger.Info("empty room deleted", "roomID", room.ID)

		return nil, nil
	}

	return room, nil
}
