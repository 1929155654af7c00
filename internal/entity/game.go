package entity

import "slices"

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Mark is the content of a cell and the identity of a player.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

const CellsPerBoard = 9

// WinCombos lists the 8 winning triples of a 3x3 grid in row-major indices.
// The same triples apply to cells of a sub-board and to sub-boards of the meta board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Opponent - returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

type SubBoard struct {
	Cells  [CellsPerBoard]Mark `json:"cells"`
	Winner Mark                `json:"winner,omitempty"`
	IsFull bool                `json:"is_full"`
}

// EmptyCells - returns indices of the empty cells in row-major order.
func (that *SubBoard) EmptyCells() []int {
	cells := make([]int, 0, CellsPerBoard)
	for i, cell := range that.Cells {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that *SubBoard) IsWon() bool {
	return that.Winner != EmptyCell
}

// Game is the whole state of one ultimate tic-tac-toe match and the unit of undo/redo.
type Game struct {
	ID string `json:"id"`

	Boards map[BoardID]*SubBoard `json:"boards"`
	Meta   map[BoardID]Mark      `json:"meta"`

	Turn         Mark      `json:"player_turn"`
	LastPlayed   BoardID   `json:"last_played,omitempty"`
	ActiveBoards []BoardID `json:"active_boards"`
	Active       bool      `json:"active"`

	Winner    Mark   `json:"winner"`
	Status    string `json:"status"`
	MoveCount int    `json:"move_count"`

	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	AIMark     Mark       `json:"ai_mark,omitempty"`
}

// NewGame - creates a game with empty boards where X moves first anywhere.
func NewGame(id string, settings Settings) *Game {
	game := &Game{
		ID:           id,
		Boards:       make(map[BoardID]*SubBoard, 9),
		Meta:         make(map[BoardID]Mark, 9),
		Turn:         PlayerX,
		ActiveBoards: AllBoards(),
		Active:       true,
		Status:       StatusOngoing,
		Mode:         settings.Mode,
		Difficulty:   settings.Difficulty,
	}

	if settings.Mode == ModePlayerVsComputer {
		game.AIMark = settings.AIMark
		if !game.AIMark.IsPlayer() {
			game.AIMark = PlayerO
		}
	}

	for _, id := range AllBoards() {
		game.Boards[id] = &SubBoard{}
		game.Meta[id] = EmptyCell
	}

	return game
}

// Board - returns the sub-board with the given id, nil for unknown ids.
func (that *Game) Board(id BoardID) *SubBoard {
	return that.Boards[id]
}

func (that *Game) IsActiveBoard(id BoardID) bool {
	return slices.Contains(that.ActiveBoards, id)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWithBot() bool {
	return that.Mode == ModePlayerVsComputer
}

// IsAITurn - reports whether the computer is to move.
func (that *Game) IsAITurn() bool {
	return that.IsWithBot() && that.Turn == that.AIMark
}

// Clone - returns a deep copy that shares no maps, slices or sub-boards with the original.
func (that *Game) Clone() *Game {
	clone := *that

	if that.Boards != nil {
		clone.Boards = make(map[BoardID]*SubBoard, len(that.Boards))
		for id, board := range that.Boards {
			if board == nil {
				clone.Boards[id] = nil
				continue
			}
			copied := *board
			clone.Boards[id] = &copied
		}
	}

	if that.Meta != nil {
		clone.Meta = make(map[BoardID]Mark, len(that.Meta))
		for id, winner := range that.Meta {
			clone.Meta[id] = winner
		}
	}

	if that.ActiveBoards != nil {
		clone.ActiveBoards = slices.Clone(that.ActiveBoards)
	}

	return &clone
}

// Restore - replaces every field with a copy of snapshot.
func (that *Game) Restore(snapshot *Game) {
	*that = *snapshot.Clone()
}
