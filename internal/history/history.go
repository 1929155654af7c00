package history

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

const DefaultLimit = 50

// Manager keeps an ordered list of game snapshots and a cursor pointing at the
// snapshot that matches the live game.
type Manager struct {
	limit     int
	snapshots []*entity.Game
	cursor    int
}

// New - creates an empty history. A non-positive limit falls back to DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Manager{
		limit:     limit,
		snapshots: make([]*entity.Game, 0, limit),
		cursor:    -1,
	}
}

// Snapshot - records a deep copy of game after the cursor, dropping any redo tail.
func (that *Manager) Snapshot(game *entity.Game) {
	that.snapshots = append(that.snapshots[:that.cursor+1], game.Clone())

	if overflow := len(that.snapshots) - that.limit; overflow > 0 {
		clear(that.snapshots[:overflow])
		that.snapshots = that.snapshots[overflow:]
	}

	that.cursor = len(that.snapshots) - 1
}

// Undo - steps the cursor back and returns a copy of that snapshot.
func (that *Manager) Undo(live *entity.Game) (*entity.Game, bool) {
	if !that.CanUndo() || live == nil || !live.Active {
		return nil, false
	}

	that.cursor--

	return that.snapshots[that.cursor].Clone(), true
}

// Redo - steps the cursor forward and returns a copy of that snapshot.
func (that *Manager) Redo(live *entity.Game) (*entity.Game, bool) {
	if !that.CanRedo() || live == nil || !live.Active {
		return nil, false
	}

	that.cursor++

	return that.snapshots[that.cursor].Clone(), true
}

// Clone - returns an independent history at the same cursor. Stored snapshots are
// never mutated, so they are shared.
func (that *Manager) Clone() *Manager {
	snapshots := make([]*entity.Game, len(that.snapshots), cap(that.snapshots))
	copy(snapshots, that.snapshots)

	return &Manager{
		limit:     that.limit,
		snapshots: snapshots,
		cursor:    that.cursor,
	}
}

func (that *Manager) Reset() {
	clear(that.snapshots)
	that.snapshots = that.snapshots[:0]
	that.cursor = -1
}

func (that *Manager) Len() int {
	return len(that.snapshots)
}

func (that *Manager) Cursor() int {
	return that.cursor
}

func (that *Manager) CanUndo() bool {
	return that.cursor > 0
}

func (that *Manager) CanRedo() bool {
	return that.cursor >= 0 && that.cursor < len(that.snapshots)-1
}

func (that *Manager) Limit() int {
	return that.limit
}
