package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// BotService picks a move for the player whose turn it is.
// The returned cell is always empty and inside one of game.ActiveBoards.
type BotService interface {
	SelectMove(game *entity.Game) (entity.Move, error)
}

// NewBotService - returns the policy for difficulty. A nil rnd seeds from the clock.
func NewBotService(difficulty entity.Difficulty, rnd *rand.Rand) (BotService, error) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	random := &randomBot{rnd: rnd}

	switch difficulty {
	case entity.EasyDifficulty:
		return random, nil
	case entity.MediumDifficulty:
		return &heuristicBot{fallback: random}, nil
	case entity.HardDifficulty:
		return &advancedBot{fallback: random}, nil
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownDifficulty, difficulty)
	}
}

// Positional preference: center, corners, edges. Used for cells and for sub-boards alike.
var preferredOrder = [9]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

// strategicBoards are the meta center and corners, each on three or more meta lines.
var strategicBoards = map[entity.BoardID]bool{
	entity.M2: true,
	entity.T1: true,
	entity.T3: true,
	entity.B1: true,
	entity.B3: true,
}

// byPreference - orders ids center first, then corners, then edges of the meta grid.
func byPreference(ids []entity.BoardID) []entity.BoardID {
	all := entity.AllBoards()
	ordered := make([]entity.BoardID, 0, len(ids))

	for _, index := range preferredOrder {
		for _, id := range ids {
			if id == all[index] {
				ordered = append(ordered, id)
			}
		}
	}

	return ordered
}

func openForWin(game *entity.Game, ids []entity.BoardID) []entity.BoardID {
	open := make([]entity.BoardID, 0, len(ids))
	for _, id := range ids {
		if board := game.Board(id); board != nil && !board.IsWon() && !board.IsFull {
			open = append(open, id)
		}
	}

	return open
}

// winningCell - returns an empty cell that completes a line for player.
func winningCell(cells [entity.CellsPerBoard]entity.Mark, player entity.Mark) (int, bool) {
	for cell := range cells {
		if cells[cell] != entity.EmptyCell {
			continue
		}

		cells[cell] = player
		_, won := tictactoe.SubBoardWinner(cells, player)
		cells[cell] = entity.EmptyCell

		if won {
			return cell, true
		}
	}

	return 0, false
}

// openThreatsThrough - counts lines through cell holding two of player's marks and one empty cell.
func openThreatsThrough(cells [entity.CellsPerBoard]entity.Mark, cell int, player entity.Mark) int {
	threats := 0

	for _, combo := range entity.WinCombos {
		if combo[0] != cell && combo[1] != cell && combo[2] != cell {
			continue
		}

		own, empty := 0, 0
		for _, i := range combo {
			switch cells[i] {
			case player:
				own++
			case entity.EmptyCell:
				empty++
			}
		}

		if own == 2 && empty == 1 {
			threats++
		}
	}

	return threats
}

// FindForkCell - returns an empty cell that gives player two or more open two-in-a-rows at once.
func FindForkCell(cells [entity.CellsPerBoard]entity.Mark, player entity.Mark) (int, bool) {
	for _, cell := range preferredOrder {
		if cells[cell] != entity.EmptyCell {
			continue
		}

		cells[cell] = player
		threats := openThreatsThrough(cells, cell, player)
		cells[cell] = entity.EmptyCell

		if threats >= 2 {
			return cell, true
		}
	}

	return 0, false
}

// setupCell - returns a cell that turns a line holding one of player's marks and two empty
// cells into an open two-in-a-row.
func setupCell(cells [entity.CellsPerBoard]entity.Mark, player entity.Mark) (int, bool) {
	for _, cell := range preferredOrder {
		if cells[cell] != entity.EmptyCell {
			continue
		}

		cells[cell] = player
		threats := openThreatsThrough(cells, cell, player)
		cells[cell] = entity.EmptyCell

		if threats >= 1 {
			return cell, true
		}
	}

	return 0, false
}

// firstMatch - returns the first board in ids where pick finds a cell.
func firstMatch(game *entity.Game, ids []entity.BoardID, pick func([entity.CellsPerBoard]entity.Mark) (int, bool)) (entity.Move, bool) {
	for _, id := range ids {
		if cell, ok := pick(game.Board(id).Cells); ok {
			return entity.Move{Board: id, Cell: cell}, true
		}
	}

	return entity.Move{}, false
}

// positionalMove - returns the first preferred empty cell of the first board in ids.
func positionalMove(game *entity.Game, ids []entity.BoardID) (entity.Move, bool) {
	for _, id := range ids {
		board := game.Board(id)
		for _, cell := range preferredOrder {
			if board.Cells[cell] == entity.EmptyCell {
				return entity.Move{Board: id, Cell: cell}, true
			}
		}
	}

	return entity.Move{}, false
}
