package entity

import (
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

// BoardID names one of the nine sub-boards: t/m/b for the row, 1..3 for the column.
type BoardID string

const (
	T1 BoardID = "t1"
	T2 BoardID = "t2"
	T3 BoardID = "t3"
	M1 BoardID = "m1"
	M2 BoardID = "m2"
	M3 BoardID = "m3"
	B1 BoardID = "b1"
	B2 BoardID = "b2"
	B3 BoardID = "b3"

	NoBoard BoardID = ""
)

// Grid is the fixed layout of sub-boards on the meta board.
var Grid = [3][3]BoardID{
	{T1, T2, T3},
	{M1, M2, M3},
	{B1, B2, B3},
}

// AllBoards returns every sub-board id in grid order.
func AllBoards() []BoardID {
	ids := make([]BoardID, 0, 9)
	for _, row := range Grid {
		ids = append(ids, row[:]...)
	}

	return ids
}

// Position - returns the grid row and column of a sub-board.
func Position(id BoardID) (int, int, error) {
	for row := range Grid {
		for col := range Grid[row] {
			if Grid[row][col] == id {
				return row, col, nil
			}
		}
	}

	return 0, 0, fmt.Errorf("%w: %q", apperror.ErrInvalidBoardID, id)
}

// BoardAt - returns the sub-board at row and col, NoBoard outside the grid.
func BoardAt(row, col int) BoardID {
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return NoBoard
	}

	return Grid[row][col]
}

// BoardIndex - returns the row-major index (0..8) of a sub-board.
func BoardIndex(id BoardID) (int, error) {
	row, col, err := Position(id)
	if err != nil {
		return 0, err
	}

	return row*3 + col, nil
}

func (that BoardID) IsValid() bool {
	_, _, err := Position(that)
	return err == nil
}

// LegalTargets - returns the sub-boards the next player may be sent to after a move in played.
// Without a previous move every sub-board is a target, otherwise the row and the column of played.
func LegalTargets(played BoardID) ([]BoardID, error) {
	if played == NoBoard {
		return AllBoards(), nil
	}

	row, col, err := Position(played)
	if err != nil {
		return nil, err
	}

	targets := make([]BoardID, 0, 5)
	for _, id := range AllBoards() {
		r, c, _ := Position(id)
		if r == row || c == col {
			targets = append(targets, id)
		}
	}

	return targets, nil
}
