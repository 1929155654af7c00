package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

// ApplyMove - places player's mark and settles sub-board and game results.
// It does not pass the turn; callers follow a Continue outcome with AdvanceTurn.
func ApplyMove(game *entity.Game, boardID entity.BoardID, cell int, player entity.Mark) (entity.MoveOutcome, error) {
	if err := validateMove(game, boardID, cell); err != nil {
		return entity.MoveOutcome{}, fmt.Errorf("invalid turn: %w", err)
	}

	board := game.Board(boardID)
	board.Cells[cell] = player
	game.MoveCount++

	outcome := entity.MoveOutcome{Result: entity.ResultContinue}

	if line, won := SubBoardWinner(board.Cells, player); won && !board.IsWon() {
		board.Winner = player
		game.Meta[boardID] = player
		outcome.SubBoardWin = &entity.SubBoardWin{Board: boardID, Line: line, Player: player}
	}

	if board.Winner == player && MetaWinner(game.Meta, player) {
		finishGame(game, player)

		outcome.Result = entity.ResultGameWon
		outcome.Winner = player

		return outcome, nil
	}

	board.IsFull = isFull(board.Cells)

	if allExhausted(game) && !MetaWinner(game.Meta, entity.PlayerX) && !MetaWinner(game.Meta, entity.PlayerO) {
		finishGame(game, entity.PlayerTie)

		outcome.Result = entity.ResultDraw
		outcome.Winner = entity.PlayerTie
	}

	return outcome, nil
}

// AdvanceTurn - hands the move to the opponent and recomputes where they may play.
// The game is left untouched when played is not a sub-board.
func AdvanceTurn(game *entity.Game, played entity.BoardID) error {
	if !played.IsValid() {
		return fmt.Errorf("failed to advance turn: %w: %q", apperror.ErrInvalidBoardID, played)
	}

	game.LastPlayed = played
	if game.Active {
		game.Turn = game.Turn.Opponent()
	}

	targets, err := ComputeActiveTargets(game)
	if err != nil {
		return fmt.Errorf("failed to advance turn: %w", err)
	}

	game.ActiveBoards = targets

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, boardID entity.BoardID, cell int) error {
	if !game.Active {
		return apperror.ErrGameFinished
	}

	board := game.Board(boardID)
	if board == nil {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidBoardID, boardID)
	}

	if cell < 0 || cell >= entity.CellsPerBoard {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !game.IsActiveBoard(boardID) {
		return fmt.Errorf("%w: %s", apperror.ErrBoardNotActive, boardID)
	}

	if board.Cells[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

func finishGame(game *entity.Game, winner entity.Mark) {
	game.Active = false
	game.Winner = winner
	game.Status = entity.StatusFinished
	game.ActiveBoards = []entity.BoardID{}
}
