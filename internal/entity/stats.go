package entity

// Stats are the finished-game tallies of one mode.
type Stats struct {
	Mode   Mode  `json:"mode"`
	Games  int64 `json:"games"`
	XWins  int64 `json:"x_wins"`
	OWins  int64 `json:"o_wins"`
	Draws  int64 `json:"draws"`
	AIWins int64 `json:"ai_wins,omitempty"`
}
