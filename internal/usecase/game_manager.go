package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const (
	subscriberBuffer = 16
	callbackTimeout  = 5 * time.Second
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type statsRepo interface {
	Record(ctx context.Context, game *entity.Game) error
	Get(ctx context.Context, mode entity.Mode) (*entity.Stats, error)
}

// Options tune the clocks around a match.
type Options struct {
	Defaults     entity.Settings
	AIDelay      time.Duration
	TimerEnabled bool
	TurnDuration time.Duration
	HistoryLimit int
}

// Update is what subscribers receive: the event and the game right after it.
type Update struct {
	Event entity.Event `json:"event"`
	Game  *entity.Game `json:"game"`
}

type subscriber struct {
	ch        chan Update
	closeOnce sync.Once
}

func (that *subscriber) close() {
	that.closeOnce.Do(func() { close(that.ch) })
}

// session serializes every event of one match.
type session struct {
	mu sync.Mutex

	match   *Match
	pending []entity.Event

	generation int
	aiTimer    *time.Timer
	turnTimer  *time.Timer

	subs   map[*subscriber]struct{}
	closed bool
}

func newSession() *session {
	return &session{subs: make(map[*subscriber]struct{})}
}

func (that *session) collect(event entity.Event) {
	that.pending = append(that.pending, event)
}

func (that *session) stopClocks() {
	that.generation++

	if that.aiTimer != nil {
		that.aiTimer.Stop()
		that.aiTimer = nil
	}

	if that.turnTimer != nil {
		that.turnTimer.Stop()
		that.turnTimer = nil
	}
}

type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	statsRepo statsRepo
	options   Options

	mu       sync.Mutex
	sessions map[string]*session
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, statsRepo statsRepo, options Options) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		gameRepo:  gameRepo,
		statsRepo: statsRepo,
		options:   options,
		sessions:  make(map[string]*session),
	}
}

// CreateGame - starts a new match. Empty settings fields take the configured defaults.
func (that *GameManager) CreateGame(ctx context.Context, settings entity.Settings) (*entity.Game, error) {
	if settings.Mode == "" {
		settings.Mode = that.options.Defaults.Mode
	}
	if settings.Difficulty == "" {
		settings.Difficulty = that.options.Defaults.Difficulty
	}
	if settings.AIMark == entity.EmptyCell {
		settings.AIMark = that.options.Defaults.AIMark
	}

	sess := newSession()

	match, err := NewMatch(uuid.NewString(), settings, that.options.HistoryLimit, nil, sess.collect)
	if err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	sess.match = match
	game := match.State()

	that.mu.Lock()
	that.sessions[game.ID] = sess
	that.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err = that.commit(ctx, sess, nil); err != nil {
		sess.closed = true
		sess.stopClocks()

		that.mu.Lock()
		delete(that.sessions, game.ID)
		that.mu.Unlock()

		return nil, err
	}

	that.logger.With("method", "CreateGame").Info("game created", "gameID", game.ID, "mode", game.Mode, "difficulty", game.Difficulty)

	return sess.match.State(), nil
}

// GetGame - returns the live game, resuming it from storage when it is not in memory.
func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	sess, err := that.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	return sess.match.State(), nil
}

// MakeTurn - applies a human move. In pvc it is rejected while the computer is to move.
func (that *GameManager) MakeTurn(ctx context.Context, id string, board entity.BoardID, cell int) (*entity.Game, error) {
	sess, err := that.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	before := sess.match.checkpoint()

	if _, err = sess.match.Play(entity.Move{Board: board, Cell: cell}); err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if err = that.commit(ctx, sess, &before); err != nil {
		return nil, err
	}

	return sess.match.State(), nil
}

// Undo - steps the match back. In pvc it stops at the last position where the human was to move.
func (that *GameManager) Undo(ctx context.Context, id string) (*entity.Game, error) {
	return that.travel(ctx, id, (*Match).Undo)
}

func (that *GameManager) Redo(ctx context.Context, id string) (*entity.Game, error) {
	return that.travel(ctx, id, (*Match).Redo)
}

// Restart - replaces the game of a match with a fresh one under the same id.
func (that *GameManager) Restart(ctx context.Context, id string) (*entity.Game, error) {
	sess, err := that.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	before := sess.match.checkpoint()
	sess.match.NewGame(id)

	if err = that.commit(ctx, sess, &before); err != nil {
		return nil, err
	}

	return sess.match.State(), nil
}

// Subscribe - registers a listener for the match. Slow listeners are dropped.
func (that *GameManager) Subscribe(ctx context.Context, id string) (<-chan Update, func(), error) {
	sess, err := that.session(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sub := &subscriber{ch: make(chan Update, subscriberBuffer)}
	if sess.closed {
		sub.close()
		return sub.ch, func() {}, nil
	}

	sess.subs[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsubscribe := func() {
		unsubOnce.Do(func() {
			sess.mu.Lock()
			delete(sess.subs, sub)
			sess.mu.Unlock()

			sub.close()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return sub.ch, unsubscribe, nil
}

func (that *GameManager) Stats(ctx context.Context, mode entity.Mode) (*entity.Stats, error) {
	parsed, err := entity.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	stats, err := that.statsRepo.Get(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed get stats: %w", err)
	}

	return stats, nil
}

// DeleteGame - stops the match clocks, closes subscriptions and removes the stored game.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.mu.Lock()
	sess, live := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if live {
		that.closeSession(sess)
	}

	err := that.gameRepo.DeleteByID(ctx, id)
	if err == nil || (live && errors.Is(err, apperror.ErrGameNotFound)) {
		that.logger.With("method", "DeleteGame").Info("game deleted", "gameID", id)
		return nil
	}

	return fmt.Errorf("failed delete game: %w", err)
}

// Close - stops every clock and subscription. Stored games are kept.
func (that *GameManager) Close() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*session)
	that.mu.Unlock()

	for _, sess := range sessions {
		that.closeSession(sess)
	}
}

func (that *GameManager) closeSession(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.closed = true
	sess.stopClocks()

	for sub := range sess.subs {
		sub.close()
		delete(sess.subs, sub)
	}
}

func (that *GameManager) travel(ctx context.Context, id string, step func(*Match) bool) (*entity.Game, error) {
	sess, err := that.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	before := sess.match.checkpoint()

	if !step(sess.match) {
		return sess.match.State(), apperror.ErrNoHistory
	}

	if err = that.commit(ctx, sess, &before); err != nil {
		return nil, err
	}

	return sess.match.State(), nil
}

// acquire - returns the locked session of a match that was not deleted.
func (that *GameManager) acquire(ctx context.Context, id string) (*session, error) {
	sess, err := that.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	// A computer move that could not be saved is played again on the next access.
	if game := sess.match.game; game.Active && game.IsAITurn() && sess.aiTimer == nil {
		that.schedule(ctx, sess)
	}

	return sess, nil
}

// session - returns the live session, resuming a stored game when needed.
func (that *GameManager) session(ctx context.Context, id string) (*session, error) {
	that.mu.Lock()
	sess, ok := that.sessions[id]
	that.mu.Unlock()

	if ok {
		return sess, nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed get game %s: %w", id, err)
	}

	sess = newSession()

	match, err := RestoreMatch(game, that.options.HistoryLimit, nil, sess.collect)
	if err != nil {
		return nil, fmt.Errorf("failed restore game %s: %w", id, err)
	}

	sess.match = match

	that.mu.Lock()
	if existing, ok := that.sessions[id]; ok {
		that.mu.Unlock()
		return existing, nil
	}
	that.sessions[id] = sess
	that.mu.Unlock()

	sess.mu.Lock()
	that.schedule(ctx, sess)
	sess.mu.Unlock()

	that.logger.With("method", "session").Info("game resumed from storage", "gameID", id)

	return sess, nil
}

// commit - persists the game, then delivers pending events and rearms the clocks.
// When the save fails the match goes back to before and the pending events are dropped,
// so callers never see a change that is not stored. The caller holds sess.mu.
func (that *GameManager) commit(ctx context.Context, sess *session, before *checkpoint) error {
	game := sess.match.State()

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		sess.pending = nil
		if before != nil {
			sess.match.rollback(*before)
		}

		return fmt.Errorf("failed update game: %w", err)
	}

	that.dispatch(ctx, sess, game)
	that.schedule(ctx, sess)

	return nil
}

func (that *GameManager) dispatch(ctx context.Context, sess *session, game *entity.Game) {
	log := that.logger.With("method", "dispatch", "gameID", game.ID)

	events := sess.pending
	sess.pending = nil

	for _, event := range events {
		if event.IsTerminal() {
			if err := that.statsRepo.Record(ctx, game); err != nil {
				log.Error("failed to record stats", "error", err)
			}
			log.Info("game finished", "winner", game.Winner)
		}

		for sub := range sess.subs {
			select {
			case sub.ch <- Update{Event: event, Game: game}:
			default:
				log.Warn("dropping slow subscriber")
				sub.close()
				delete(sess.subs, sub)
			}
		}
	}
}

// schedule - arms the AI reply and the turn clock for the position now on the board.
// The caller holds sess.mu.
func (that *GameManager) schedule(ctx context.Context, sess *session) {
	sess.stopClocks()

	game := sess.match.State()
	if sess.closed || !game.Active {
		return
	}

	generation := sess.generation

	if game.IsAITurn() {
		if that.options.AIDelay <= 0 {
			that.playAI(ctx, sess)
			return
		}

		sess.aiTimer = time.AfterFunc(that.options.AIDelay, func() {
			that.onClock(sess, generation, that.playAI)
		})

		return
	}

	if that.options.TimerEnabled && that.options.TurnDuration > 0 {
		sess.turnTimer = time.AfterFunc(that.options.TurnDuration, func() {
			that.onClock(sess, generation, that.forceMove)
		})
	}
}

func (that *GameManager) onClock(sess *session, generation int, action func(context.Context, *session)) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed || sess.generation != generation {
		return
	}

	action(ctx, sess)
}

func (that *GameManager) playAI(ctx context.Context, sess *session) {
	log := that.logger.With("method", "playAI", "gameID", sess.match.game.ID)

	before := sess.match.checkpoint()

	move, _, err := sess.match.PlayAI()
	if err != nil {
		sess.match.rollback(before)
		sess.pending = nil
		log.Error("computer failed to move", "error", err)
		return
	}

	log.Debug("computer moved", "board", move.Board, "cell", move.Cell)

	if err = that.commit(ctx, sess, &before); err != nil {
		log.Error("failed to save computer move", "error", err)

		// Without a delay the retry waits for the next access, see acquire.
		if that.options.AIDelay > 0 {
			that.schedule(ctx, sess)
		}
	}
}

func (that *GameManager) forceMove(ctx context.Context, sess *session) {
	log := that.logger.With("method", "forceMove", "gameID", sess.match.game.ID)

	before := sess.match.checkpoint()

	move, _, err := sess.match.OnTimerExpired()
	if err != nil {
		sess.match.rollback(before)
		sess.pending = nil
		log.Error("failed to force move", "error", err)
		return
	}

	log.Info("turn time expired, move forced", "board", move.Board, "cell", move.Cell)

	if err = that.commit(ctx, sess, &before); err != nil {
		log.Error("failed to save forced move", "error", err)
		that.schedule(ctx, sess)
	}
}
