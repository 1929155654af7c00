package service

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

// heuristicBot plays the first rule that applies: win, block, build, position, random.
type heuristicBot struct {
	fallback BotService
}

func (that *heuristicBot) SelectMove(game *entity.Game) (entity.Move, error) {
	if len(game.ActiveBoards) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	me := game.Turn
	opponent := me.Opponent()
	contested := openForWin(game, game.ActiveBoards)

	if move, ok := firstMatch(game, contested, func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return winningCell(cells, me)
	}); ok {
		return move, nil
	}

	if move, ok := firstMatch(game, contested, func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return winningCell(cells, opponent)
	}); ok {
		return move, nil
	}

	if move, ok := firstMatch(game, contested, func(cells [entity.CellsPerBoard]entity.Mark) (int, bool) {
		return setupCell(cells, me)
	}); ok {
		return move, nil
	}

	if move, ok := positionalMove(game, byPreference(game.ActiveBoards)); ok {
		return move, nil
	}

	return that.fallback.SelectMove(game)
}
