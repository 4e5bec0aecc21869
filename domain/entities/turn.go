package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DispatchOutcome classifies the result of dispatching a command transcript.
type DispatchOutcome string

const (
	OutcomeOK           DispatchOutcome = "ok"
	OutcomeNoMatch      DispatchOutcome = "no_match"
	OutcomeHandlerError DispatchOutcome = "handler_error"
	OutcomeNoSpeech     DispatchOutcome = "no_speech"
)

// Turn records a single wake→command→response exchange. Turns are created by
// the supervisor when a wake event fires and completed when the response has
// been spoken.
type Turn struct {
	ID         string          `json:"id" bson:"_id"`
	Wake       WakeEvent       `json:"wake" bson:"wake"`
	Command    Transcript      `json:"command" bson:"command"`
	Response   string          `json:"response" bson:"response"`
	Outcome    DispatchOutcome `json:"outcome" bson:"outcome"`
	StartedAt  time.Time       `json:"started_at" bson:"started_at"`
	FinishedAt time.Time       `json:"finished_at" bson:"finished_at"`
}

// NewTurn starts a turn for the given wake event.
func NewTurn(wake WakeEvent) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Wake:      wake,
		StartedAt: time.Now(),
	}
}

// Complete fills in the result of the turn and stamps its finish time.
func (t *Turn) Complete(command Transcript, response string, outcome DispatchOutcome) {
	t.Command = command
	t.Response = response
	t.Outcome = outcome
	t.FinishedAt = time.Now()
}

// Elapsed returns how long the turn took, or zero if it is still in flight.
func (t *Turn) Elapsed() time.Duration {
	if t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}

// Validate checks the turn before persistence.
func (t *Turn) Validate() error {
	if t.ID == "" {
		return errors.New("turn id is required")
	}
	if t.StartedAt.IsZero() {
		return errors.New("turn start time is required")
	}
	return nil
}
