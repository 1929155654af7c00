package service

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

// advancedBot looks at the meta board first, then plays sub-boards with fork awareness.
type advancedBot struct {
	fallback BotService
}

func (that *advancedBot) SelectMove(game *entity.Game) (entity.Move, error) {
	if len(game.ActiveBoards) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	me := game.Turn
	opponent := me.Opponent()
	ordered := byPreference(game.ActiveBoards)
	contested := openForWin(game, ordered)

	rules := []func() (entity.Move, bool){
		func() (entity.Move, bool) { return metaLineMove(game, me) },
		func() (entity.Move, bool) { return metaLineMove(game, opponent) },
		func() (entity.Move, bool) { return firstMatch(game, contested, winFor(me)) },
		func() (entity.Move, bool) { return firstMatch(game, contested, winFor(opponent)) },
		func() (entity.Move, bool) { return firstMatch(game, contested, forkFor(me)) },
		func() (entity.Move, bool) { return firstMatch(game, contested, forkFor(opponent)) },
		func() (entity.Move, bool) { return firstMatch(game, contested, setupFor(me)) },
		func() (entity.Move, bool) { return positionalMove(game, strategicOnly(ordered)) },
		func() (entity.Move, bool) { return positionalMove(game, ordered) },
	}

	for _, rule := range rules {
		if move, ok := rule(); ok {
			return move, nil
		}
	}

	return that.fallback.SelectMove(game)
}

// metaLineMove - finds a sub-board that would complete a meta line for owner and
// returns the cell that wins it there. Called with the opponent's mark it finds the block.
func metaLineMove(game *entity.Game, owner entity.Mark) (entity.Move, bool) {
	boards := entity.AllBoards()

	for _, combo := range entity.WinCombos {
		owned := 0
		var missing entity.BoardID

		for _, index := range combo {
			id := boards[index]
			switch game.Meta[id] {
			case owner:
				owned++
			case entity.EmptyCell:
				missing = id
			}
		}

		if owned != 2 || missing == entity.NoBoard || !game.IsActiveBoard(missing) {
			continue
		}

		if cell, ok := winningCell(game.Board(missing).Cells, owner); ok {
			return entity.Move{Board: missing, Cell: cell}, true
		}
	}

	return entity.Move{}, false
}

func strategicOnly(ids []entity.BoardID) []entity.BoardID {
	strategic := make([]entity.BoardID, 0, len(ids))
	for _, id := range ids {
		if strategicBoards[id] {
			strategic = append(strategic, id)
		}
	}

	return strategic
}

func winFor(player entity.Mark) func([entity.CellsPerBoard]entity.Mark) (int, bool) {
	return func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return winningCell(cells, player)
	}
}

func forkFor(player entity.Mark) func([entity.CellsPerBoard]entity.Mark) (int, bool) {
	return func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return FindForkCell(cells, player)
	}
}

func setupFor(player entity.Mark) func([entity.CellsPerBoard]entity.Mark) (int, bool) {
	return func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return setupCell(cells, player)
	}
}
