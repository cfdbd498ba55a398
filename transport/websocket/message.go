package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

const (
	actionNew   = "game:new"
	actionJoin  = "game:join"
	actionTurn  = "game:turn"
	actionReset = "game:reset"
	actionLeave = "game:leave"

	actionState = "game:state"
	actionError = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Mode      string `json:"mode,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.StateView `json:"game,omitempty"`
	Error string            `json:"error,omitempty"`
}

// beforeComputer rebuilds the view a player sees between their move and the
// computer's answer.
func beforeComputer(view entity.StateView, computer string) entity.StateView {
	view.Board[view.ComputerCell] = entity.EmptyCell
	view.Turn = computer
	view.Status = entity.StatusOngoing
	view.Winner = entity.EmptyCell
	view.Moves--
	view.ComputerCell = entity.NoCell

	return view
}
