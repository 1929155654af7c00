package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

// SubBoardWinner - returns the first winning line held by player, if any.
func SubBoardWinner(cells [entity.CellsPerBoard]entity.Mark, player entity.Mark) ([3]int, bool) {
	for _, combo := range entity.WinCombos {
		if cells[combo[0]] == player && cells[combo[1]] == player && cells[combo[2]] == player {
			return combo, true
		}
	}

	return [3]int{}, false
}

// MetaWinner - reports whether player owns three sub-boards in a line.
func MetaWinner(meta map[entity.BoardID]entity.Mark, player entity.Mark) bool {
	boards := entity.AllBoards()

	for _, combo := range entity.WinCombos {
		if meta[boards[combo[0]]] == player && meta[boards[combo[1]]] == player && meta[boards[combo[2]]] == player {
			return true
		}
	}

	return false
}

func isFull(cells [entity.CellsPerBoard]entity.Mark) bool {
	for _, cell := range cells {
		if cell == entity.EmptyCell {
			return false
		}
	}

	return true
}

// ComputeActiveTargets - returns the sub-boards the player to move may play in.
// Full sub-boards are never targets; won ones stay targets until full.
// When every board the last move points at is full, the first row (top to bottom)
// with a playable sub-board becomes the target set.
// An unknown last board is reported instead of falling back.
func ComputeActiveTargets(game *entity.Game) ([]entity.BoardID, error) {
	if !game.Active {
		return []entity.BoardID{}, nil
	}

	legal, err := entity.LegalTargets(game.LastPlayed)
	if err != nil {
		return nil, fmt.Errorf("last played: %w", err)
	}

	targets := openBoards(game, legal)
	if len(targets) > 0 || game.LastPlayed == entity.NoBoard {
		return targets, nil
	}

	for _, row := range entity.Grid {
		if playable := openBoards(game, row[:]); len(playable) > 0 {
			return playable, nil
		}
	}

	return []entity.BoardID{}, nil
}

func openBoards(game *entity.Game, ids []entity.BoardID) []entity.BoardID {
	open := make([]entity.BoardID, 0, len(ids))
	for _, id := range ids {
		if board := game.Board(id); board != nil && !board.IsFull {
			open = append(open, id)
		}
	}

	return open
}

// allExhausted - reports whether every sub-board is either won or full.
func allExhausted(game *entity.Game) bool {
	for _, id := range entity.AllBoards() {
		board := game.Board(id)
		if board == nil {
			continue
		}
		if !board.IsWon() && !board.IsFull {
			return false
		}
	}

	return true
}
