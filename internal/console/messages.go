package console

import (
	"time"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

// MessageType defines the type of event streamed to console clients.
type MessageType string

const (
	MessageTypeState MessageType = "state"
	MessageTypeTurn  MessageType = "turn"
	MessageTypeError MessageType = "error"
)

// BaseMessage is the common envelope for all streamed events.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// StateMessage announces a supervisor state transition.
type StateMessage struct {
	BaseMessage
	State      string `json:"state"`
	Recoveries int    `json:"recoveries"`
}

// TurnMessage carries a completed wake→command→response exchange.
type TurnMessage struct {
	BaseMessage
	Turn *entities.Turn `json:"turn"`
}

// ErrorMessage reports a console-side failure to the client.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// NewStateMessage creates a state event stamped with the current time.
func NewStateMessage(state entities.ServiceState, recoveries int) *StateMessage {
	return &StateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeState,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		State:      state.String(),
		Recoveries: recoveries,
	}
}

// NewErrorMessage creates an error event stamped with the current time.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// NewTurnMessage creates a turn event stamped with the current time.
func NewTurnMessage(turn *entities.Turn) *TurnMessage {
	return &TurnMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeTurn,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Turn: turn,
	}
}
