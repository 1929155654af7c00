package entity

// Move addresses a single cell.
type Move struct {
	Board BoardID `json:"board"`
	Cell  int     `json:"cell"`
}

type Result string

const (
	ResultContinue Result = "continue"
	ResultGameWon  Result = "game_won"
	ResultDraw     Result = "draw"
)

// SubBoardWin describes the line that just claimed a sub-board.
type SubBoardWin struct {
	Board  BoardID `json:"board"`
	Line   [3]int  `json:"line"`
	Player Mark    `json:"player"`
}

type MoveOutcome struct {
	Result      Result       `json:"result"`
	Winner      Mark         `json:"winner,omitempty"`
	SubBoardWin *SubBoardWin `json:"sub_board_win,omitempty"`
}

func (that MoveOutcome) IsTerminal() bool {
	return that.Result == ResultGameWon || that.Result == ResultDraw
}

type EventType string

const (
	EventNewGame EventType = "new_game"
	EventMove    EventType = "move"
	EventGameWon EventType = "game_won"
	EventDraw    EventType = "draw"
	EventUndo    EventType = "undo"
	EventRedo    EventType = "redo"
)

// Event is what renderers, statistics and clients react to.
type Event struct {
	Type        EventType    `json:"type"`
	GameID      string       `json:"game_id"`
	Mode        Mode         `json:"mode,omitempty"`
	Player      Mark         `json:"player,omitempty"`
	Move        *Move        `json:"move,omitempty"`
	SubBoardWin *SubBoardWin `json:"sub_board_win,omitempty"`
	Winner      Mark         `json:"winner,omitempty"`
	Forced      bool         `json:"forced,omitempty"`
}

func (that Event) IsTerminal() bool {
	return that.Type == EventGameWon || that.Type == EventDraw
}
