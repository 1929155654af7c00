package usecase

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	events []entity.Event
}

func (that *eventLog) record(event entity.Event) {
	that.events = append(that.events, event)
}

func (that *eventLog) types() []entity.EventType {
	types := make([]entity.EventType, 0, len(that.events))
	for _, event := range that.events {
		types = append(types, event.Type)
	}

	return types
}

func newTestMatch(t *testing.T, settings entity.Settings) (*Match, *eventLog) {
	t.Helper()

	log := &eventLog{}
	match, err := NewMatch("match", settings, 0, rand.New(rand.NewSource(1)), log.record)
	require.NoError(t, err)

	return match, log
}

var (
	pvp = entity.Settings{Mode: entity.ModePlayerVsPlayer}
	pvc = entity.Settings{Mode: entity.ModePlayerVsComputer, Difficulty: entity.HardDifficulty}
)

func TestNewMatch(t *testing.T) {
	t.Run("Starts with a new game event", func(t *testing.T) {
		match, log := newTestMatch(t, pvp)

		assert.Equal(t, []entity.EventType{entity.EventNewGame}, log.types())
		assert.Equal(t, entity.PlayerX, match.State().Turn)
		assert.False(t, match.CanUndo())
	})

	t.Run("Rejects unknown mode", func(t *testing.T) {
		_, err := NewMatch("match", entity.Settings{Mode: "solo"}, 0, nil, nil)

		assert.ErrorIs(t, err, apperror.ErrUnknownMode)
	})
}

func TestMatch_Play(t *testing.T) {
	t.Run("Emits a move event", func(t *testing.T) {
		// Given
		match, log := newTestMatch(t, pvp)

		// When
		outcome, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})

		// Then
		require.NoError(t, err)
		assert.Equal(t, entity.ResultContinue, outcome.Result)
		require.Len(t, log.events, 2)
		assert.Equal(t, entity.EventMove, log.events[1].Type)
		assert.Equal(t, entity.PlayerX, log.events[1].Player)
		assert.Equal(t, &entity.Move{Board: entity.M2, Cell: 4}, log.events[1].Move)
		assert.True(t, match.CanUndo())
	})

	t.Run("Rejected move leaves no trace", func(t *testing.T) {
		match, log := newTestMatch(t, pvp)
		before := match.State()

		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 9})

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Equal(t, before, match.State())
		assert.Len(t, log.events, 1)
		assert.False(t, match.CanUndo())
	})

	t.Run("Human cannot move for the computer", func(t *testing.T) {
		match, _ := newTestMatch(t, pvc)
		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)

		_, err = match.Play(entity.Move{Board: entity.M2, Cell: 0})

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("State is a copy", func(t *testing.T) {
		match, _ := newTestMatch(t, pvp)

		state := match.State()
		state.Board(entity.M2).Cells[4] = entity.PlayerO

		assert.Equal(t, entity.EmptyCell, match.State().Board(entity.M2).Cells[4])
	})
}

func TestMatch_PlayAI(t *testing.T) {
	t.Run("Computer answers a human move", func(t *testing.T) {
		match, log := newTestMatch(t, pvc)
		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)

		move, _, err := match.PlayAI()

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, log.events[len(log.events)-1].Player)
		assert.Equal(t, entity.PlayerO, match.State().Board(move.Board).Cells[move.Cell])
		assert.Equal(t, entity.PlayerX, match.State().Turn)
	})

	t.Run("Not the computer's turn", func(t *testing.T) {
		match, _ := newTestMatch(t, pvc)

		_, _, err := match.PlayAI()

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Computer moves first when it plays X", func(t *testing.T) {
		match, _ := newTestMatch(t, entity.Settings{Mode: entity.ModePlayerVsComputer, AIMark: entity.PlayerX})

		_, _, err := match.PlayAI()

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, match.State().Turn)
	})
}

func TestMatch_OnTimerExpired(t *testing.T) {
	t.Run("Forces a legal move for the human", func(t *testing.T) {
		match, log := newTestMatch(t, pvp)

		move, outcome, err := match.OnTimerExpired()

		require.NoError(t, err)
		assert.Equal(t, entity.ResultContinue, outcome.Result)
		assert.Equal(t, entity.PlayerX, match.State().Board(move.Board).Cells[move.Cell])

		last := log.events[len(log.events)-1]
		assert.True(t, last.Forced)
		assert.Equal(t, entity.PlayerX, last.Player)
	})

	t.Run("Finished game", func(t *testing.T) {
		match, _ := newTestMatch(t, pvp)
		match.game.Active = false

		_, _, err := match.OnTimerExpired()

		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Empty active set is reported", func(t *testing.T) {
		match, _ := newTestMatch(t, pvp)
		match.game.ActiveBoards = []entity.BoardID{}

		_, _, err := match.OnTimerExpired()

		assert.ErrorIs(t, err, apperror.ErrInconsistentState)
	})
}

func TestMatch_UndoRedo(t *testing.T) {
	t.Run("Single steps in pvp", func(t *testing.T) {
		// Given: two moves
		match, log := newTestMatch(t, pvp)
		start := match.State()
		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)
		afterFirst := match.State()
		_, err = match.Play(entity.Move{Board: entity.M2, Cell: 0})
		require.NoError(t, err)
		afterSecond := match.State()

		// When / Then: each undo goes back one move
		require.True(t, match.Undo())
		assert.Equal(t, afterFirst, match.State())
		require.True(t, match.Undo())
		assert.Equal(t, start, match.State())
		assert.False(t, match.Undo())

		// When / Then: redo replays them
		require.True(t, match.Redo())
		require.True(t, match.Redo())
		assert.Equal(t, afterSecond, match.State())
		assert.False(t, match.Redo())

		assert.Equal(t, entity.EventRedo, log.events[len(log.events)-1].Type)
	})

	t.Run("Pvc undo returns to the human turn", func(t *testing.T) {
		// Given: a human move and the computer's answer
		match, _ := newTestMatch(t, pvc)
		start := match.State()
		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)
		_, _, err = match.PlayAI()
		require.NoError(t, err)
		answered := match.State()

		// When
		require.True(t, match.Undo())

		// Then: both moves are gone
		assert.Equal(t, start, match.State())

		// When: redo
		require.True(t, match.Redo())

		// Then: both moves are back
		assert.Equal(t, answered, match.State())
	})

	t.Run("New game clears history", func(t *testing.T) {
		match, _ := newTestMatch(t, pvp)
		_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)

		match.NewGame("next")

		assert.False(t, match.CanUndo())
		assert.Equal(t, "next", match.State().ID)
		assert.Zero(t, match.State().MoveCount)
	})
}

func TestMatch_TerminalEventOnce(t *testing.T) {
	// Given: a random pvp game played to the end
	match, log := newTestMatch(t, pvp)
	for match.State().Active {
		_, _, err := match.OnTimerExpired()
		require.NoError(t, err)
	}

	// When: more input arrives
	_, _, err := match.OnTimerExpired()
	require.ErrorIs(t, err, apperror.ErrGameFinished)
	assert.False(t, match.Undo())

	// Then: exactly one terminal event was emitted
	terminal := 0
	for _, event := range log.events {
		if event.IsTerminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
}

func TestRestoreMatch(t *testing.T) {
	t.Run("Continues where it stopped", func(t *testing.T) {
		// Given: a stored pvc game where the computer is to move
		original, _ := newTestMatch(t, pvc)
		_, err := original.Play(entity.Move{Board: entity.M2, Cell: 4})
		require.NoError(t, err)

		// When
		restored, err := RestoreMatch(original.State(), 0, nil, nil)

		// Then: the game continues where it stopped with a fresh history
		require.NoError(t, err)
		assert.Equal(t, original.State(), restored.State())
		assert.False(t, restored.CanUndo())

		_, _, err = restored.PlayAI()
		require.NoError(t, err)
	})

	t.Run("Unknown last board is rejected", func(t *testing.T) {
		// Given: a stored game pointing at a board that does not exist
		game := entity.NewGame("broken", pvp)
		game.LastPlayed = "q7"

		// When
		_, err := RestoreMatch(game, 0, nil, nil)

		// Then
		require.ErrorIs(t, err, apperror.ErrInconsistentState)
		assert.ErrorIs(t, err, apperror.ErrInvalidBoardID)
	})
}

func TestMatch_Rollback(t *testing.T) {
	// Given: a pvp match with one move
	match, _ := newTestMatch(t, pvp)
	_, err := match.Play(entity.Move{Board: entity.M2, Cell: 4})
	require.NoError(t, err)

	before := match.checkpoint()

	// When: another move is played and taken back
	_, err = match.Play(entity.Move{Board: entity.T2, Cell: 0})
	require.NoError(t, err)
	match.rollback(before)

	// Then: the board and the history are those of the first move
	game := match.State()
	assert.Equal(t, 1, game.MoveCount)
	assert.Equal(t, entity.EmptyCell, game.Board(entity.T2).Cells[0])
	assert.False(t, match.CanRedo())

	require.True(t, match.Undo())
	assert.Zero(t, match.State().MoveCount)
	assert.False(t, match.CanUndo())
}
