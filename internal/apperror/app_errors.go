package apperror

import "errors"

var (
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrInvalidBoardID = errors.New("invalid board id")
	ErrBoardNotActive = errors.New("board is not an active target")

	// ErrInconsistentState means the engine left a game active with no legal move.
	ErrInconsistentState = errors.New("game state is inconsistent")

	ErrGameNotFound      = errors.New("game not found")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownMode       = errors.New("unknown game mode")

	ErrNoHistory = errors.New("nothing to undo or redo")
)
