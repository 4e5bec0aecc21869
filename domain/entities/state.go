package entities

// ServiceState is the supervisor's position in the listen/dispatch cycle.
// Exactly one instance exists, owned and mutated only by the supervisor.
type ServiceState int

const (
	StateIdle ServiceState = iota
	StateListeningForWake
	StateCapturingCommand
	StateDispatching
	StateErrorRecovery
)

var stateNames = map[ServiceState]string{
	StateIdle:             "idle",
	StateListeningForWake: "listening_for_wake",
	StateCapturingCommand: "capturing_command",
	StateDispatching:      "dispatching",
	StateErrorRecovery:    "error_recovery",
}

func (s ServiceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
