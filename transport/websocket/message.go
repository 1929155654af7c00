package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const (
	actionState = "game:state"
	actionEvent = "game:event"
	actionTurn  = "game:turn"
	actionUndo  = "game:undo"
	actionRedo  = "game:redo"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ResponsePayload struct {
	Event *entity.Event `json:"event,omitempty"`
	Game  *entity.Game  `json:"game,omitempty"`
	Error string        `json:"error,omitempty"`
}

func encode(action string, payload ResponsePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	message, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return message, nil
}
