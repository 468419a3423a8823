package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playhall/gameroom/internal/apperror"
	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/pkg"
	"github.com/playhall/gameroom/internal/repository"
	"github.com/playhall/gameroom/internal/service"
	"github.com/playhall/gameroom/transport/rest"
)

// fakeDirectory is an in-memory stand-in for the room manager behind the
// REST surface.
type fakeDirectory struct {
	players map[string]*entity.Player
	rooms   map[string]*entity.Room
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		players: make(map[string]*entity.Player),
		rooms:   make(map[string]*entity.Room),
	}
}

func (that *fakeDirectory) GetOrCreatePlayer(_ context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		playerID = pkg.GeneratePlayerID()
	}
	player, ok := that.players[playerID]
	if !ok {
		player = &entity.Player{ID: playerID}
		that.players[playerID] = player
	}
	return player, nil
}

func (that *fakeDirectory) CreateRoom(_ context.Context, playerID, gameType string) (*entity.Room, error) {
	room, err := entity.NewRoom(pkg.GenerateRoomCode(), gameType)
	if err != nil {
		return nil, err
	}
	room.Players = []*entity.Player{{ID: playerID, Mark: entity.MarkX, RoomID: room.ID}}
	that.rooms[room.ID] = room
	return room, nil
}

func (that *fakeDirectory) JoinRoom(_ context.Context, roomID, playerID string) (*entity.Room, error) {
	room, ok := that.rooms[roomID]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if room.PlayerByID(playerID) != nil {
		return room, nil
	}
	if room.IsFull() {
		return nil, apperror.ErrRoomFull
	}
	room.Players = append(room.Players, &entity.Player{ID: playerID, Mark: entity.MarkO, RoomID: room.ID})
	room.Status = entity.StatusOngoing
	return room, nil
}

func (that *fakeDirectory) ListWaitingRooms(_ context.Context, gameType string) ([]*entity.Room, error) {
	var waiting []*entity.Room
	for _, room := range that.rooms {
		if room.IsWaiting() && (gameType == "" || room.Type == gameType) {
			waiting = append(waiting, room)
		}
	}
	return waiting, nil
}

func newDirectoryServer(t *testing.T) (*MatchesClient, *fakeDirectory) {
	t.Helper()

	directory := newFakeDirectory()
	handlers := rest.NewHandlers(testLogger(), directory, service.NewAuthService("test-secret"))

	server := httptest.NewServer(handlers.Routes())
	t.Cleanup(server.Close)

	return NewMatchesClient(server.URL), directory
}

func TestMatchesClient_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Registers a guest and keeps the credentials", func(t *testing.T) {
		// Given: a fresh directory
		matches, _ := newDirectoryServer(t)

		// When: authenticating without an id
		err := matches.Authenticate(ctx, "")

		// Then: the client holds a generated id and a verifiable token
		require.NoError(t, err)
		assert.NotEmpty(t, matches.PlayerID())
		assert.NotEmpty(t, matches.Token())

		playerID, err := service.NewAuthService("test-secret").ParseToken(matches.Token())
		require.NoError(t, err)
		assert.Equal(t, matches.PlayerID(), playerID)
	})

	t.Run("Keeps a provided player id", func(t *testing.T) {
		matches, _ := newDirectoryServer(t)

		err := matches.Authenticate(ctx, "player-1")

		require.NoError(t, err)
		assert.Equal(t, "player-1", matches.PlayerID())
	})
}

func TestMatchesClient_CreateMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Opens a waiting match", func(t *testing.T) {
		// Given: an authenticated client
		matches, _ := newDirectoryServer(t)
		require.NoError(t, matches.Authenticate(ctx, "player-1"))

		// When: creating a connect4 match
		match, err := matches.CreateMatch(ctx, entity.GameTypeConnectFour)

		// Then: the directory answers with the waiting room
		require.NoError(t, err)
		assert.NotEmpty(t, match.ID)
		assert.Equal(t, entity.GameTypeConnectFour, match.GameType)
		assert.Equal(t, entity.StatusWaiting, match.Status)
		assert.Equal(t, 1, match.Players)
	})

	t.Run("Fails without authentication", func(t *testing.T) {
		matches, _ := newDirectoryServer(t)

		_, err := matches.CreateMatch(ctx, entity.GameTypeConnectFour)

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("Fails for an unknown game type", func(t *testing.T) {
		matches, _ := newDirectoryServer(t)
		require.NoError(t, matches.Authenticate(ctx, "player-1"))

		_, err := matches.CreateMatch(ctx, "checkers")

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestMatchesClient_JoinMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Takes the second seat and starts the game", func(t *testing.T) {
		// Given: a waiting match created by another player
		host, _ := newDirectoryServer(t)
		require.NoError(t, host.Authenticate(ctx, "host"))
		match, err := host.CreateMatch(ctx, entity.GameTypeTicTacToe)
		require.NoError(t, err)

		guest := NewMatchesClient(host.baseURL)
		require.NoError(t, guest.Authenticate(ctx, "guest"))

		// When: the guest joins by code
		joined, err := guest.JoinMatch(ctx, match.ID)

		// Then: both seats are taken and play begins
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOngoing, joined.Status)
		assert.Equal(t, 2, joined.Players)
	})

	t.Run("Fails for an unknown code", func(t *testing.T) {
		matches, _ := newDirectoryServer(t)
		require.NoError(t, matches.Authenticate(ctx, "player-1"))

		_, err := matches.JoinMatch(ctx, "00000000")

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestMatchesClient_ListMatches(t *testing.T) {
	ctx := context.Background()

	// Given: one waiting match per variant
	matches, _ := newDirectoryServer(t)
	require.NoError(t, matches.Authenticate(ctx, "player-1"))

	_, err := matches.CreateMatch(ctx, entity.GameTypeConnectFour)
	require.NoError(t, err)
	_, err = matches.CreateMatch(ctx, entity.GameTypeTicTacToe)
	require.NoError(t, err)

	t.Run("Lists everything without a filter", func(t *testing.T) {
		listed, err := matches.ListMatches(ctx, "")

		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("Filters by variant", func(t *testing.T) {
		listed, err := matches.ListMatches(ctx, entity.GameTypeTicTacToe)

		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, entity.GameTypeTicTacToe, listed[0].GameType)
	})
}

func TestMatchesClient_SessionConfig(t *testing.T) {
	matches, _ := newDirectoryServer(t)
	require.NoError(t, matches.Authenticate(context.Background(), "player-1"))

	config := matches.SessionConfig("ws://localhost:9091", Match{ID: "12345678", GameType: entity.GameTypeConnectFour})

	assert.Equal(t, "ws://localhost:9091", config.ServerURL)
	assert.Equal(t, "12345678", config.MatchID)
	assert.Equal(t, entity.GameTypeConnectFour, config.GameType)
	assert.Equal(t, "player-1", config.PlayerID)
	assert.Equal(t, matches.Token(), config.Token)
}
