package service

import (
	"math/rand"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type randomBot struct {
	rnd *rand.Rand
}

// SelectMove - picks a random active sub-board, then a random empty cell in it.
func (that *randomBot) SelectMove(game *entity.Game) (entity.Move, error) {
	playable := make([]entity.BoardID, 0, len(game.ActiveBoards))
	for _, id := range game.ActiveBoards {
		if board := game.Board(id); board != nil && len(board.EmptyCells()) > 0 {
			playable = append(playable, id)
		}
	}

	if len(playable) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	boardID := playable[that.rnd.Intn(len(playable))]
	availableCells := game.Board(boardID).EmptyCells()

	return entity.Move{Board: boardID, Cell: availableCells[that.rnd.Intn(len(availableCells))]}, nil
}
