package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/playhall/gameroom/internal/board"
	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/protocol"
	"github.com/playhall/gameroom/internal/usecase"
)

// handleRoom - authenticates the token query parameter, upgrades the
// connection and runs the session loop until the peer drops.
func (that *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRoom")

	roomID := r.PathValue("code")

	playerID, err := that.auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		log.Error("rejected connection", "roomID", roomID, "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log = log.With("roomID", roomID, "playerID", playerID)
	log.Info("WebSocket connection established")

	wrapped := &connection{conn: conn}

	if !that.awaitHandshake(r.Context(), wrapped, roomID, playerID) {
		return
	}

	defer func() {
		that.unregister(roomID, playerID, wrapped)
		that.handleLeave(roomID, playerID)
	}()

	that.sessionLoop(r.Context(), wrapped, roomID, playerID)
}

// awaitHandshake - reads the join_game message that must open every
// session, seats the player and pushes the first snapshot to both peers.
func (that *Server) awaitHandshake(ctx context.Context, conn *connection, roomID, playerID string) bool {
	log := that.logger.With("method", "awaitHandshake", "roomID", roomID)

	_, raw, err := conn.conn.ReadMessage()
	if err != nil {
		log.Error("connection closed before handshake", "error", err)
		return false
	}

	msg, err := protocol.DecodeClient(raw)
	if err != nil {
		log.Error("failed to decode handshake", "error", err)
		_ = conn.send(protocol.ErrorMessage{Code: "bad_handshake", Message: "expected join_game"})
		return false
	}

	join, ok := msg.(protocol.JoinGame)
	if !ok {
		log.Error("first message is not join_game")
		_ = conn.send(protocol.ErrorMessage{Code: "bad_handshake", Message: "expected join_game"})
		return false
	}

	if join.PlayerID != "" && join.PlayerID != playerID {
		log.Error("handshake player does not match token", "claimed", join.PlayerID)
		_ = conn.send(protocol.ErrorMessage{Code: "bad_handshake", Message: "player does not match token"})
		return false
	}

	room, err := that.rooms.JoinRoom(ctx, roomID, playerID)
	if err != nil {
		log.Error("failed to join room", "error", err)
		_ = conn.send(protocol.ErrorMessage{Code: "join_failed", Message: err.Error()})
		return false
	}

	that.register(roomID, playerID, conn)
	that.broadcastState(room)

	return true
}

// sessionLoop - dispatches move and play_again intents until the peer
// disconnects. Protocol errors are logged and dropped without closing the
// session.
func (that *Server) sessionLoop(ctx context.Context, conn *connection, roomID, playerID string) {
	log := that.logger.With("method", "sessionLoop", "roomID", roomID, "playerID", playerID)

	for {
		_, raw, err := conn.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		msg, err := protocol.DecodeClient(raw)
		if errors.Is(err, protocol.ErrUnknownKind) || errors.Is(err, protocol.ErrMalformedFrame) {
			log.Warn("dropping unrecognized message", "error", err)
			continue
		}
		if err != nil {
			log.Warn("failed to decode message", "error", err)
			continue
		}

		switch intent := msg.(type) {
		case protocol.Move:
			that.handleMove(ctx, conn, roomID, playerID, intent)
		case protocol.PlayAgain:
			that.handlePlayAgain(ctx, conn, roomID, playerID)
		default:
			// a second join_game is harmless, resend the snapshot
			if room, roomErr := that.rooms.JoinRoom(ctx, roomID, playerID); roomErr == nil {
				that.broadcastState(room)
			}
		}
	}
}

func (that *Server) handleMove(ctx context.Context, conn *connection, roomID, playerID string, intent protocol.Move) {
	log := that.logger.With("method", "handleMove", "roomID", roomID, "playerID", playerID)

	move := usecase.Move{Column: intent.Column}
	if intent.Position != nil {
		move.Position = &board.Cell{Row: intent.Position.Y, Col: intent.Position.X}
	}

	room, err := that.rooms.MakeMove(ctx, roomID, playerID, move)
	if err != nil {
		log.Warn("rejected move", "error", err)
		_ = conn.send(protocol.ErrorMessage{Code: "move_rejected", Message: err.Error()})
		return
	}

	if room.IsFinished() {
		that.broadcastFinished(room)
		return
	}

	that.broadcastState(room)
}

func (that *Server) handlePlayAgain(ctx context.Context, conn *connection, roomID, playerID string) {
	log := that.logger.With("method", "handlePlayAgain", "roomID", roomID, "playerID", playerID)

	room, err := that.rooms.RequestRematch(ctx, roomID, playerID)
	if err != nil {
		log.Warn("rejected rematch request", "error", err)
		_ = conn.send(protocol.ErrorMessage{Code: "rematch_rejected", Message: err.Error()})
		return
	}

	that.broadcastState(room)
}

// handleLeave - runs after a peer drops: an ongoing game becomes a walkover
// and the remaining player is told.
func (that *Server) handleLeave(roomID, playerID string) {
	log := that.logger.With("method", "handleLeave", "roomID", roomID, "playerID", playerID)

	room, err := that.rooms.LeaveRoom(context.Background(), roomID, playerID)
	if err != nil {
		log.Error("failed to handle leave", "error", err)
		return
	}

	if room == nil {
		return
	}

	if room.IsFinished() && room.Winner != "" {
		that.broadcastFinished(room)
	}
}

// broadcastState - pushes a personalized game_state snapshot to every
// connected peer of the room.
func (that *Server) broadcastState(room *entity.Room) {
	log := that.logger.With("method", "broadcastState", "roomID", room.ID)

	for playerID, conn := range that.peers(room.ID) {
		if err := conn.send(stateFor(room, playerID)); err != nil {
			log.Error("failed to send game update", "playerID", playerID, "error", err)
		}
	}
}

func (that *Server) broadcastFinished(room *entity.Room) {
	log := that.logger.With("method", "broadcastFinished", "roomID", room.ID)

	msg := protocol.GameFinished{
		Board:        room.Board.Clone(),
		Winner:       room.Winner,
		WinningCells: room.WinningCells,
	}

	for playerID, conn := range that.peers(room.ID) {
		if err := conn.send(msg); err != nil {
			log.Error("failed to send game finished", "playerID", playerID, "error", err)
		}
	}
}

// stateFor - builds the snapshot a particular player should see.
func stateFor(room *entity.Room, playerID string) protocol.GameState {
	state := protocol.GameState{
		Board:         room.Board.Clone(),
		CurrentPlayer: room.Turn,
		GameStatus:    room.Status,
		RoomCode:      room.ID,
	}

	if player := room.PlayerByID(playerID); player != nil {
		state.PlayerColor = player.Mark
		state.OpponentColor = entity.OppositeMark(player.Mark)
	}

	return state
}
