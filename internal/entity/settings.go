package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

type Mode string

const (
	ModePlayerVsPlayer   Mode = "pvp"
	ModePlayerVsComputer Mode = "pvc"
)

type Difficulty string

const (
	EasyDifficulty   Difficulty = "easy"
	MediumDifficulty Difficulty = "medium"
	HardDifficulty   Difficulty = "hard"
)

// Settings holds what a new game is started with.
type Settings struct {
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	AIMark     Mark       `json:"ai_mark,omitempty"`
}

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ModePlayerVsPlayer, ModePlayerVsComputer:
		return mode, nil
	case "":
		return ModePlayerVsPlayer, nil
	default:
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownMode, value)
	}
}

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(strings.ToLower(strings.TrimSpace(value))); difficulty {
	case EasyDifficulty, MediumDifficulty, HardDifficulty:
		return difficulty, nil
	case "":
		return EasyDifficulty, nil
	default:
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownDifficulty, value)
	}
}

// Validate - fills defaults and rejects unknown values.
func (that *Settings) Validate() error {
	mode, err := ParseMode(string(that.Mode))
	if err != nil {
		return err
	}

	difficulty, err := ParseDifficulty(string(that.Difficulty))
	if err != nil {
		return err
	}

	that.Mode = mode
	that.Difficulty = difficulty

	if mode == ModePlayerVsComputer && !that.AIMark.IsPlayer() {
		that.AIMark = PlayerO
	}

	if mode == ModePlayerVsPlayer {
		that.AIMark = EmptyCell
	}

	return nil
}
