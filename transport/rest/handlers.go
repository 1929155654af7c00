package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var errBadRequest = errors.New("malformed request body")

type gameUseCase interface {
	CreateGame(ctx context.Context, settings entity.Settings) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, board entity.BoardID, cell int) (*entity.Game, error)
	Undo(ctx context.Context, id string) (*entity.Game, error)
	Redo(ctx context.Context, id string) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
	Stats(ctx context.Context, mode entity.Mode) (*entity.Stats, error)
}

type GameHandler interface {
	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	DeleteGame(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
	Undo(w http.ResponseWriter, r *http.Request)
	Redo(w http.ResponseWriter, r *http.Request)
	Restart(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type gameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var settings entity.Settings
	if err := decodeBody(r, &settings); err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	game, err := that.games.CreateGame(r.Context(), settings)
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "DeleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandler) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var move entity.Move
	if err := decodeBody(r, &move); err != nil {
		that.writeError(w, "MakeTurn", err)
		return
	}

	if !move.Board.IsValid() {
		that.writeError(w, "MakeTurn", fmt.Errorf("%w: %q", apperror.ErrInvalidBoardID, move.Board))
		return
	}

	game, err := that.games.MakeTurn(r.Context(), chi.URLParam(r, "id"), move.Board, move.Cell)
	if err != nil {
		that.writeError(w, "MakeTurn", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	that.respond(w, r, "Undo", that.games.Undo)
}

func (that *gameHandler) Redo(w http.ResponseWriter, r *http.Request) {
	that.respond(w, r, "Redo", that.games.Redo)
}

func (that *gameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	that.respond(w, r, "Restart", that.games.Restart)
}

func (that *gameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.games.Stats(r.Context(), entity.Mode(chi.URLParam(r, "mode")))
	if err != nil {
		that.writeError(w, "Stats", err)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

func (that *gameHandler) respond(w http.ResponseWriter, r *http.Request, method string, action func(context.Context, string) (*entity.Game, error)) {
	game, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, method, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *gameHandler) writeError(w http.ResponseWriter, method string, err error) {
	status := StatusFor(err)

	log := that.logger.With("method", method)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Debug("request rejected", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFor - maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidBoardID),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrUnknownMode),
		errors.Is(err, apperror.ErrUnknownDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrBoardNotActive),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNoHistory):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody - reads a JSON body. An empty body leaves target untouched.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}
