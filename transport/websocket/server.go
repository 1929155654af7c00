package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
)

const (
	sendBuffer   = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var errUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, board entity.BoardID, cell int) (*entity.Game, error)
	Undo(ctx context.Context, id string) (*entity.Game, error)
	Redo(ctx context.Context, id string) (*entity.Game, error)
	Subscribe(ctx context.Context, id string) (<-chan usecase.Update, func(), error)
}

type Server struct {
	logger   *slog.Logger
	games    gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, gameID string, message *Message) (*entity.Game, error)
}

func New(logger *slog.Logger, games gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: writeWait,
			CheckOrigin:      func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, string, *Message) (*entity.Game, error)),
	}

	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionUndo] = func(ctx context.Context, gameID string, _ *Message) (*entity.Game, error) {
		return server.games.Undo(ctx, gameID)
	}
	server.handlers[actionRedo] = func(ctx context.Context, gameID string, _ *Message) (*entity.Game, error) {
		return server.games.Redo(ctx, gameID)
	}

	return server
}

// Handle - upgrades GET /ws/{id} and streams the events of that game until either side leaves.
func (that *Server) Handle(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	log := that.logger.With("method", "Handle", "gameID", gameID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before reading the state so no move falls between the two.
	updates, unsubscribe, err := that.games.Subscribe(ctx, gameID)
	if err != nil {
		httpError(w, err)
		return
	}
	defer unsubscribe()

	game, err := that.games.GetGame(r.Context(), gameID)
	if err != nil {
		httpError(w, err)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, sendBuffer)
	that.queue(send, actionState, ResponsePayload{Game: game})

	go that.forward(ctx, cancel, updates, send)
	go that.readMessages(ctx, cancel, conn, gameID, send)

	log.Info("WebSocket connection established")

	if err = writeWithHeartbeat(ctx, conn, send); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, apperror.ErrGameNotFound) {
		status = http.StatusNotFound
	}

	http.Error(w, err.Error(), status)
}

// forward - turns game updates into outgoing messages. A closed subscription ends the connection.
func (that *Server) forward(ctx context.Context, cancel context.CancelFunc, updates <-chan usecase.Update, send chan<- []byte) {
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			that.queue(send, actionEvent, ResponsePayload{Event: &update.Event, Game: update.Game})
		}
	}
}

// readMessages - processes messages from the client.
func (that *Server) readMessages(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, gameID string, send chan<- []byte) {
	log := that.logger.With("method", "readMessages", "gameID", gameID)
	defer cancel()

	conn.SetReadLimit(1 << 12)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, body, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.queue(send, "error", ResponsePayload{Error: "malformed message"})
			continue
		}

		game, err := that.process(ctx, gameID, &message)
		if err != nil {
			log.Debug("action rejected", "action", message.Action, "error", err)
			that.queue(send, message.Action, ResponsePayload{Error: err.Error()})
			continue
		}

		that.queue(send, message.Action, ResponsePayload{Game: game})
	}
}

func (that *Server) process(ctx context.Context, gameID string, message *Message) (*entity.Game, error) {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownAction, message.Action)
	}

	return handler(ctx, gameID, message)
}

func (that *Server) handleGameTurn(ctx context.Context, gameID string, message *Message) (*entity.Game, error) {
	var move entity.Move
	if err := json.Unmarshal(message.Payload, &move); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.games.MakeTurn(ctx, gameID, move.Board, move.Cell)
}

// queue - drops the message when the client does not keep up.
func (that *Server) queue(send chan<- []byte, action string, payload ResponsePayload) {
	message, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	select {
	case send <- message:
	default:
		that.logger.Warn("client is too slow, message dropped", "action", action)
	}
}

func writeWithHeartbeat(ctx context.Context, conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
		}
	}
}
