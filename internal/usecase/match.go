package usecase

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/history"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/service"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
)

// Match owns one live game with its history and reacts to discrete events one at a time.
// It is not safe for concurrent use; GameManager serializes access.
type Match struct {
	game     *entity.Game
	history  *history.Manager
	settings entity.Settings

	bot    service.BotService
	random service.BotService

	notify func(entity.Event)
}

// checkpoint is a match as it was before a change that may have to be taken back.
type checkpoint struct {
	game    *entity.Game
	history *history.Manager
}

// NewMatch - validates settings and starts the first game of the match.
func NewMatch(id string, settings entity.Settings, historyLimit int, rnd *rand.Rand, notify func(entity.Event)) (*Match, error) {
	match, err := newMatch(settings, historyLimit, rnd, notify)
	if err != nil {
		return nil, err
	}

	match.NewGame(id)

	return match, nil
}

// RestoreMatch - resumes a stored game with a fresh history starting at it.
func RestoreMatch(game *entity.Game, historyLimit int, rnd *rand.Rand, notify func(entity.Event)) (*Match, error) {
	if _, err := tictactoe.ComputeActiveTargets(game); err != nil {
		return nil, fmt.Errorf("%w: stored game %s: %w", apperror.ErrInconsistentState, game.ID, err)
	}

	settings := entity.Settings{Mode: game.Mode, Difficulty: game.Difficulty, AIMark: game.AIMark}

	match, err := newMatch(settings, historyLimit, rnd, notify)
	if err != nil {
		return nil, err
	}

	match.game = game.Clone()
	match.history.Snapshot(match.game)

	return match, nil
}

func newMatch(settings entity.Settings, historyLimit int, rnd *rand.Rand, notify func(entity.Event)) (*Match, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63())) //nolint: gosec // it's ok
	}

	bot, err := service.NewBotService(settings.Difficulty, rnd)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	random, err := service.NewBotService(entity.EasyDifficulty, rnd)
	if err != nil {
		return nil, fmt.Errorf("failed to create random bot: %w", err)
	}

	if notify == nil {
		notify = func(entity.Event) {}
	}

	return &Match{
		history:  history.New(historyLimit),
		settings: settings,
		bot:      bot,
		random:   random,
		notify:   notify,
	}, nil
}

// NewGame - discards the current game and its history.
func (that *Match) NewGame(id string) {
	that.game = entity.NewGame(id, that.settings)
	that.history.Reset()
	that.history.Snapshot(that.game)

	that.notify(entity.Event{Type: entity.EventNewGame, GameID: id, Mode: that.game.Mode, Player: that.game.Turn})
}

// Play - applies a human move for the player to move.
func (that *Match) Play(move entity.Move) (entity.MoveOutcome, error) {
	if that.game.Active && that.game.IsAITurn() {
		return entity.MoveOutcome{}, apperror.ErrNotYourTurn
	}

	return that.apply(move, false)
}

// PlayAI - lets the configured bot move. Only valid when the computer is to move.
func (that *Match) PlayAI() (entity.Move, entity.MoveOutcome, error) {
	if !that.game.Active {
		return entity.Move{}, entity.MoveOutcome{}, apperror.ErrGameFinished
	}

	if !that.game.IsAITurn() {
		return entity.Move{}, entity.MoveOutcome{}, apperror.ErrNotYourTurn
	}

	return that.selectAndApply(that.bot, false)
}

// OnTimerExpired - forces a move for the player whose time ran out.
// The computer plays its own policy, a human gets a random legal move.
func (that *Match) OnTimerExpired() (entity.Move, entity.MoveOutcome, error) {
	if !that.game.Active {
		return entity.Move{}, entity.MoveOutcome{}, apperror.ErrGameFinished
	}

	policy := that.random
	if that.game.IsAITurn() {
		policy = that.bot
	}

	return that.selectAndApply(policy, true)
}

// Undo - steps back one move, or in pvc back to the last position where the human was to move.
func (that *Match) Undo() bool {
	if !that.step(that.history.Undo) {
		return false
	}

	for that.game.IsAITurn() && that.history.CanUndo() {
		that.step(that.history.Undo)
	}

	that.notify(entity.Event{Type: entity.EventUndo, GameID: that.game.ID, Mode: that.game.Mode, Player: that.game.Turn})

	return true
}

// Redo - replays one undone move, or in pvc forward to the next human turn.
func (that *Match) Redo() bool {
	if !that.step(that.history.Redo) {
		return false
	}

	for that.game.Active && that.game.IsAITurn() && that.history.CanRedo() {
		that.step(that.history.Redo)
	}

	that.notify(entity.Event{Type: entity.EventRedo, GameID: that.game.ID, Mode: that.game.Mode, Player: that.game.Turn})

	return true
}

// State - returns a copy of the live game.
func (that *Match) State() *entity.Game {
	return that.game.Clone()
}

func (that *Match) CanUndo() bool {
	return that.history.CanUndo()
}

func (that *Match) CanRedo() bool {
	return that.history.CanRedo()
}

func (that *Match) checkpoint() checkpoint {
	return checkpoint{game: that.game.Clone(), history: that.history.Clone()}
}

// rollback - puts the match back to cp. Events already emitted are not taken back.
func (that *Match) rollback(cp checkpoint) {
	that.game = cp.game
	that.history = cp.history
}

func (that *Match) step(move func(*entity.Game) (*entity.Game, bool)) bool {
	snapshot, ok := move(that.game)
	if !ok {
		return false
	}

	that.game.Restore(snapshot)

	return true
}

func (that *Match) selectAndApply(policy service.BotService, forced bool) (entity.Move, entity.MoveOutcome, error) {
	move, err := policy.SelectMove(that.game)
	if err != nil {
		return entity.Move{}, entity.MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInconsistentState, err)
	}

	outcome, err := that.apply(move, forced)
	if err != nil {
		return move, entity.MoveOutcome{}, fmt.Errorf("%w: bot move rejected: %w", apperror.ErrInconsistentState, err)
	}

	return move, outcome, nil
}

func (that *Match) apply(move entity.Move, forced bool) (entity.MoveOutcome, error) {
	player := that.game.Turn

	outcome, err := tictactoe.ApplyMove(that.game, move.Board, move.Cell, player)
	if err != nil {
		return entity.MoveOutcome{}, err
	}

	if err = tictactoe.AdvanceTurn(that.game, move.Board); err != nil {
		return entity.MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInconsistentState, err)
	}
	that.history.Snapshot(that.game)

	that.notify(entity.Event{
		Type:        entity.EventMove,
		GameID:      that.game.ID,
		Mode:        that.game.Mode,
		Player:      player,
		Move:        &move,
		SubBoardWin: outcome.SubBoardWin,
		Forced:      forced,
	})

	switch outcome.Result {
	case entity.ResultGameWon:
		that.notify(entity.Event{Type: entity.EventGameWon, GameID: that.game.ID, Mode: that.game.Mode, Winner: outcome.Winner})
	case entity.ResultDraw:
		that.notify(entity.Event{Type: entity.EventDraw, GameID: that.game.ID, Mode: that.game.Mode, Winner: entity.PlayerTie})
	case entity.ResultContinue:
	}

	return outcome, nil
}
