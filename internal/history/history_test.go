package history

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() *entity.Game {
	return entity.NewGame("history", entity.Settings{Mode: entity.ModePlayerVsPlayer})
}

func play(t *testing.T, game *entity.Game, board entity.BoardID, cell int) {
	t.Helper()

	_, err := tictactoe.ApplyMove(game, board, cell, game.Turn)
	require.NoError(t, err)
	require.NoError(t, tictactoe.AdvanceTurn(game, board))
}

func TestManager_Snapshot(t *testing.T) {
	t.Run("Snapshot does not alias the live game", func(t *testing.T) {
		// Given: a history with the initial state
		game := newTestGame()
		manager := New(0)
		manager.Snapshot(game)

		// When: the live game is changed
		play(t, game, entity.M2, 4)
		manager.Snapshot(game)

		// Then: the first snapshot is still empty
		restored, ok := manager.Undo(game)
		require.True(t, ok)
		assert.Equal(t, entity.EmptyCell, restored.Board(entity.M2).Cells[4])
		assert.Equal(t, entity.AllBoards(), restored.ActiveBoards)
	})

	t.Run("Push after undo drops the redo tail", func(t *testing.T) {
		// Given: three snapshots and one undo
		game := newTestGame()
		manager := New(10)
		manager.Snapshot(game)
		play(t, game, entity.M2, 4)
		manager.Snapshot(game)
		play(t, game, entity.M2, 0)
		manager.Snapshot(game)

		restored, ok := manager.Undo(game)
		require.True(t, ok)
		game.Restore(restored)

		// When: a different move is recorded
		play(t, game, entity.T2, 0)
		manager.Snapshot(game)

		// Then: nothing is left to redo
		assert.Equal(t, 3, manager.Len())
		assert.Equal(t, 2, manager.Cursor())
		assert.False(t, manager.CanRedo())
	})

	t.Run("Oldest entries are evicted", func(t *testing.T) {
		// Given: a history limited to 3 entries
		game := newTestGame()
		manager := New(3)

		// When: five snapshots are taken
		for i := range 5 {
			game.MoveCount = i
			manager.Snapshot(game)
		}

		// Then: the last three remain and the cursor points at the newest
		assert.Equal(t, 3, manager.Len())
		assert.Equal(t, 2, manager.Cursor())

		first, ok := manager.Undo(game)
		require.True(t, ok)
		assert.Equal(t, 3, first.MoveCount)

		oldest, ok := manager.Undo(game)
		require.True(t, ok)
		assert.Equal(t, 2, oldest.MoveCount)

		_, ok = manager.Undo(game)
		assert.False(t, ok)
	})
}

func TestManager_UndoRedo(t *testing.T) {
	t.Run("No-op at the ends", func(t *testing.T) {
		game := newTestGame()
		manager := New(DefaultLimit)
		manager.Snapshot(game)

		_, ok := manager.Undo(game)
		assert.False(t, ok)

		_, ok = manager.Redo(game)
		assert.False(t, ok)
		assert.Equal(t, 0, manager.Cursor())
	})

	t.Run("No-op on a finished game", func(t *testing.T) {
		// Given: two snapshots of a game that is already over
		game := newTestGame()
		manager := New(DefaultLimit)
		manager.Snapshot(game)
		play(t, game, entity.M2, 4)
		manager.Snapshot(game)
		game.Active = false

		// When
		restored, ok := manager.Undo(game)

		// Then
		assert.False(t, ok)
		assert.Nil(t, restored)
		assert.Equal(t, 1, manager.Cursor())
	})

	t.Run("Round trip over a random game", func(t *testing.T) {
		// Given: a recorded random game of up to 40 moves
		rnd := rand.New(rand.NewSource(42))
		game := newTestGame()
		manager := New(DefaultLimit)
		manager.Snapshot(game)

		states := []*entity.Game{game.Clone()}
		for len(states) < 40 && game.Active {
			board := game.ActiveBoards[rnd.Intn(len(game.ActiveBoards))]
			cells := game.Board(board).EmptyCells()
			play(t, game, board, cells[rnd.Intn(len(cells))])

			if !game.Active {
				break
			}

			manager.Snapshot(game)
			states = append(states, game.Clone())
		}

		// When: undoing to the start
		for i := len(states) - 2; i >= 0; i-- {
			restored, ok := manager.Undo(game)
			require.True(t, ok)
			game.Restore(restored)

			// Then: every step equals the recorded state
			require.Equal(t, states[i], game)
		}

		// When: redoing to the end
		for i := 1; i < len(states); i++ {
			restored, ok := manager.Redo(game)
			require.True(t, ok)
			game.Restore(restored)

			require.Equal(t, states[i], game)
		}

		assert.False(t, manager.CanRedo())
	})
}

func TestManager_Reset(t *testing.T) {
	game := newTestGame()
	manager := New(DefaultLimit)
	manager.Snapshot(game)
	manager.Snapshot(game)

	manager.Reset()

	assert.Equal(t, 0, manager.Len())
	assert.Equal(t, -1, manager.Cursor())
	assert.False(t, manager.CanUndo())
	assert.False(t, manager.CanRedo())
}

func TestManager_Clone(t *testing.T) {
	// Given: a history of two moves with one undone
	game := newTestGame()
	manager := New(DefaultLimit)
	manager.Snapshot(game)
	play(t, game, entity.M2, 4)
	manager.Snapshot(game)
	play(t, game, entity.T2, 4)
	manager.Snapshot(game)

	restored, ok := manager.Undo(game)
	require.True(t, ok)
	game.Restore(restored)

	// When: the copy is taken and the original moves on
	copied := manager.Clone()
	play(t, game, entity.B2, 0)
	manager.Snapshot(game)

	// Then: the copy still sits on the undone move with its redo intact
	assert.Equal(t, 3, copied.Len())
	assert.Equal(t, 1, copied.Cursor())
	assert.True(t, copied.CanRedo())

	redone, ok := copied.Redo(game)
	require.True(t, ok)
	assert.Equal(t, entity.T2, redone.LastPlayed)
	assert.False(t, manager.CanRedo())
}
