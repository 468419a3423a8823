package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/repository"
	"github.com/playhall/gameroom/testing/suite"
)

func TestRoomRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, s := suite.New(t)

	repo := repository.NewRoomRepository(s.Storage)

	t.Run("Round-trips a room through storage", func(t *testing.T) {
		// Given: an ongoing connect4 room with a move played
		room, err := entity.NewRoom("11111111", entity.GameTypeConnectFour)
		require.NoError(t, err)
		room.Players = []*entity.Player{
			{ID: "p1", Mark: entity.MarkX, RoomID: room.ID},
			{ID: "p2", Mark: entity.MarkO, RoomID: room.ID},
		}
		room.Status = entity.StatusOngoing
		_, err = room.DropPiece(entity.MarkX, 3)
		require.NoError(t, err)

		// When: saving and loading it
		require.NoError(t, repo.CreateOrUpdate(ctx, room))
		loaded, err := repo.GetByID(ctx, room.ID)

		// Then: the board, seats and turn survive
		require.NoError(t, err)
		assert.Equal(t, room.ID, loaded.ID)
		assert.Equal(t, entity.StatusOngoing, loaded.Status)
		assert.Equal(t, entity.MarkO, loaded.Turn)
		assert.Equal(t, entity.MarkX, loaded.Board[0][3])
		require.Len(t, loaded.Players, 2)
		assert.Equal(t, entity.MarkX, loaded.Players[0].Mark)
	})

	t.Run("Returns ErrRoomNotFound for a missing room", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "00000000")

		assert.ErrorIs(t, err, repository.ErrRoomNotFound)
	})

	t.Run("Indexes waiting rooms for the directory", func(t *testing.T) {
		// Given: one waiting and one ongoing room
		waiting, err := entity.NewRoom("22222222", entity.GameTypeTicTacToe)
		require.NoError(t, err)
		require.NoError(t, repo.CreateOrUpdate(ctx, waiting))

		ongoing, err := entity.NewRoom("33333333", entity.GameTypeTicTacToe)
		require.NoError(t, err)
		ongoing.Status = entity.StatusOngoing
		require.NoError(t, repo.CreateOrUpdate(ctx, ongoing))

		// When: listing the waiting index
		rooms, err := repo.ListWaiting(ctx)

		// Then: only the waiting room is listed
		require.NoError(t, err)
		ids := make([]string, 0, len(rooms))
		for _, room := range rooms {
			ids = append(ids, room.ID)
		}
		assert.Contains(t, ids, waiting.ID)
		assert.NotContains(t, ids, ongoing.ID)
	})

	t.Run("Unindexes a room that leaves the waiting state", func(t *testing.T) {
		// Given: an indexed waiting room
		room, err := entity.NewRoom("44444444", entity.GameTypeTicTacToe)
		require.NoError(t, err)
		require.NoError(t, repo.CreateOrUpdate(ctx, room))

		// When: the game starts and the room is saved again
		room.Status = entity.StatusOngoing
		require.NoError(t, repo.CreateOrUpdate(ctx, room))

		// Then: the directory no longer lists it
		rooms, err := repo.ListWaiting(ctx)
		require.NoError(t, err)
		for _, listed := range rooms {
			assert.NotEqual(t, room.ID, listed.ID)
		}
	})

	t.Run("Delete removes the room and its index entry", func(t *testing.T) {
		room, err := entity.NewRoom("55555555", entity.GameTypeTicTacToe)
		require.NoError(t, err)
		require.NoError(t, repo.CreateOrUpdate(ctx, room))

		require.NoError(t, repo.DeleteByID(ctx, room.ID))

		_, err = repo.GetByID(ctx, room.ID)
		assert.ErrorIs(t, err, repository.ErrRoomNotFound)

		rooms, err := repo.ListWaiting(ctx)
		require.NoError(t, err)
		for _, listed := range rooms {
			assert.NotEqual(t, room.ID, listed.ID)
		}
	})
}
