package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playhall/gameroom/internal/apperror"
	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/repository"
)

type roomDirectory interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	CreateRoom(ctx context.Context, playerID, gameType string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	ListWaitingRooms(ctx context.Context, gameType string) ([]*entity.Room, error)
}

type authService interface {
	GenerateToken(playerID string) (string, error)
	ParseToken(tokenString string) (string, error)
}

type Handlers struct {
	logger *slog.Logger
	rooms  roomDirectory
	auth   authService
}

func NewHandlers(logger *slog.Logger, rooms roomDirectory, auth authService) *Handlers {
	return &Handlers{
		logger: logger,
		rooms:  rooms,
		auth:   auth,
	}
}

// Routes - mounts the match-directory endpoints.
func (that *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)
	mux.HandleFunc("POST /auth/guest", that.guestTokenHandler)
	mux.HandleFunc("POST /matches", that.createMatchHandler)
	mux.HandleFunc("POST /matches/{code}/join", that.joinMatchHandler)
	mux.HandleFunc("GET /matches", that.listMatchesHandler)

	return mux
}

type guestTokenRequest struct {
	PlayerID string `json:"player_id,omitempty"`
}

type guestTokenResponse struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type createMatchRequest struct {
	GameType string `json:"game_type"`
}

type matchResponse struct {
	ID       string `json:"id"`
	GameType string `json:"game_type"`
	Status   string `json:"status"`
	Players  int    `json:"players"`
}

// guestTokenHandler - registers (or resolves) a guest player and issues the
// token the socket endpoint expects as a query parameter.
func (that *Handlers) guestTokenHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "guestTokenHandler")

	var req guestTokenRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	player, err := that.rooms.GetOrCreatePlayer(r.Context(), req.PlayerID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		http.Error(w, "failed to register player", http.StatusInternalServerError)
		return
	}

	token, err := that.auth.GenerateToken(player.ID)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, guestTokenResponse{PlayerID: player.ID, Token: token})
}

func (that *Handlers) createMatchHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createMatchHandler")

	playerID, ok := that.requireToken(w, r)
	if !ok {
		return
	}

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, err := that.rooms.CreateRoom(r.Context(), playerID, req.GameType)
	if errors.Is(err, entity.ErrUnknownGameType) {
		http.Error(w, "unknown game type", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("failed to create room", "error", err)
		http.Error(w, "failed to create match", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusCreated, toMatchResponse(room))
}

func (that *Handlers) joinMatchHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "joinMatchHandler")

	playerID, ok := that.requireToken(w, r)
	if !ok {
		return
	}

	room, err := that.rooms.JoinRoom(r.Context(), r.PathValue("code"), playerID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, apperror.ErrRoomFull) {
		http.Error(w, "match is full", http.StatusConflict)
		return
	}
	if err != nil {
		log.Error("failed to join room", "error", err)
		http.Error(w, "failed to join match", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, toMatchResponse(room))
}

func (that *Handlers) listMatchesHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listMatchesHandler")

	rooms, err := that.rooms.ListWaitingRooms(r.Context(), r.URL.Query().Get("game_type"))
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "failed to list matches", http.StatusInternalServerError)
		return
	}

	matches := make([]matchResponse, 0, len(rooms))
	for _, room := range rooms {
		matches = append(matches, toMatchResponse(room))
	}

	that.writeJSON(w, http.StatusOK, matches)
}

// requireToken - extracts and verifies the bearer token, answering 401 on
// failure.
func (that *Handlers) requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return "", false
	}

	playerID, err := that.auth.ParseToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return "", false
	}

	return playerID, true
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func toMatchResponse(room *entity.Room) matchResponse {
	return matchResponse{
		ID:       room.ID,
		GameType: room.Type,
		Status:   room.Status,
		Players:  len(room.Players),
	}
}
