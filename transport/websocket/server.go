package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/playhall/gameroom/internal/entity"
	"github.com/playhall/gameroom/internal/protocol"
	"github.com/playhall/gameroom/internal/usecase"
)

type roomManager interface {
	JoinRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	MakeMove(ctx context.Context, roomID, playerID string, move usecase.Move) (*entity.Room, error)
	RequestRematch(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error)
}

type authService interface {
	ParseToken(tokenString string) (string, error)
}

// Server upgrades /rooms/{code} requests and speaks the session protocol
// with connected clients. It keeps one connection hub per live room.
type Server struct {
	logger *slog.Logger
	rooms  roomManager
	auth   authService

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]map[string]*connection // room code -> player id -> conn
}

func New(logger *slog.Logger, rooms roomManager, auth authService) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
		auth:   auth,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		connections: make(map[string]map[string]*connection),
	}
}

// Handler - returns the HTTP handler serving the socket endpoint, so tests
// can mount it on an httptest server.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{code}", that.handleRoom)

	return mux
}

// Start - starts the socket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{ //nolint: gosec // long-lived sockets, no read timeout
		Addr:    ":" + port,
		Handler: that.Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// connection wraps a socket with a write lock: broadcasts and error replies
// may race on the same peer.
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (that *connection) send(msg protocol.ServerMessage) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) register(roomID, playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.connections[roomID] == nil {
		that.connections[roomID] = make(map[string]*connection)
	}
	that.connections[roomID][playerID] = conn
}

func (that *Server) unregister(roomID, playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.connections[roomID][playerID] == conn {
		delete(that.connections[roomID], playerID)
		if len(that.connections[roomID]) == 0 {
			delete(that.connections, roomID)
		}
	}
}

func (that *Server) peers(roomID string) map[string]*connection {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	peers := make(map[string]*connection, len(that.connections[roomID]))
	for playerID, conn := range that.connections[roomID] {
		peers[playerID] = conn
	}

	return peers
}
