package entity

import (
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	t.Run("Player vs player", func(t *testing.T) {
		// When: a new game is created
		game := NewGame("123", Settings{Mode: ModePlayerVsPlayer})

		// Then: every sub-board is empty, X moves first anywhere
		require.Len(t, game.Boards, 9)
		for _, id := range AllBoards() {
			assert.Equal(t, &SubBoard{}, game.Board(id))
			assert.Equal(t, EmptyCell, game.Meta[id])
		}
		assert.Equal(t, PlayerX, game.Turn)
		assert.Equal(t, AllBoards(), game.ActiveBoards)
		assert.True(t, game.Active)
		assert.True(t, game.IsOngoing())
		assert.False(t, game.IsWithBot())
		assert.Equal(t, EmptyCell, game.AIMark)
	})

	t.Run("Player vs computer defaults the AI to O", func(t *testing.T) {
		game := NewGame("123", Settings{Mode: ModePlayerVsComputer, Difficulty: HardDifficulty})

		assert.True(t, game.IsWithBot())
		assert.Equal(t, PlayerO, game.AIMark)
		assert.False(t, game.IsAITurn())
		assert.Equal(t, HardDifficulty, game.Difficulty)
	})

	t.Run("Computer playing X moves first", func(t *testing.T) {
		game := NewGame("123", Settings{Mode: ModePlayerVsComputer, AIMark: PlayerX})

		assert.True(t, game.IsAITurn())
	})
}

func TestGame_Clone(t *testing.T) {
	// Given: a game with some state
	game := NewGame("123", Settings{Mode: ModePlayerVsPlayer})
	game.Board(T1).Cells[0] = PlayerX
	game.Meta[M2] = PlayerO
	game.ActiveBoards = []BoardID{T1, T2}

	// When: it is cloned and the original is mutated
	clone := game.Clone()
	require.Equal(t, game, clone)

	game.Board(T1).Cells[1] = PlayerO
	game.Board(T1).Winner = PlayerO
	game.Meta[M2] = PlayerX
	game.ActiveBoards[0] = B3

	// Then: the clone is untouched
	assert.Equal(t, EmptyCell, clone.Board(T1).Cells[1])
	assert.Equal(t, EmptyCell, clone.Board(T1).Winner)
	assert.Equal(t, PlayerO, clone.Meta[M2])
	assert.Equal(t, []BoardID{T1, T2}, clone.ActiveBoards)
}

func TestGame_Restore(t *testing.T) {
	// Given: a snapshot and a live game that moved on
	live := NewGame("123", Settings{Mode: ModePlayerVsPlayer})
	snapshot := live.Clone()
	live.Board(B2).Cells[4] = PlayerX
	live.Turn = PlayerO
	live.LastPlayed = B2

	// When: the snapshot is restored
	live.Restore(snapshot)

	// Then: the live game equals the snapshot without sharing its containers
	assert.Equal(t, snapshot, live)
	live.Board(B2).Cells[4] = PlayerO
	assert.Equal(t, EmptyCell, snapshot.Board(B2).Cells[4])
}

func TestSubBoard_EmptyCells(t *testing.T) {
	board := &SubBoard{Cells: [9]Mark{PlayerX, EmptyCell, PlayerO, EmptyCell, PlayerX, PlayerO, PlayerX, PlayerO, EmptyCell}}

	assert.Equal(t, []int{1, 3, 8}, board.EmptyCells())
}

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
}

func TestSettings_Validate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		settings := Settings{}

		require.NoError(t, settings.Validate())

		assert.Equal(t, ModePlayerVsPlayer, settings.Mode)
		assert.Equal(t, EasyDifficulty, settings.Difficulty)
		assert.Equal(t, EmptyCell, settings.AIMark)
	})

	t.Run("Computer opponent", func(t *testing.T) {
		settings := Settings{Mode: "PVC", Difficulty: "Hard"}

		require.NoError(t, settings.Validate())

		assert.Equal(t, ModePlayerVsComputer, settings.Mode)
		assert.Equal(t, HardDifficulty, settings.Difficulty)
		assert.Equal(t, PlayerO, settings.AIMark)
	})

	t.Run("Unknown difficulty", func(t *testing.T) {
		settings := Settings{Difficulty: "impossible"}

		assert.ErrorIs(t, settings.Validate(), apperror.ErrUnknownDifficulty)
	})

	t.Run("Unknown mode", func(t *testing.T) {
		settings := Settings{Mode: "online"}

		assert.ErrorIs(t, settings.Validate(), apperror.ErrUnknownMode)
	})
}
