package publisher

// State is a step of the publish sequence.
type State int

const (
	// StateIdle is the state before Run is called.
	StateIdle State = iota
	// StateConnecting waits for the broker to accept the connection.
	StateConnecting
	// StateConnected means the broker accepted the connection.
	StateConnected
	// StatePublishing waits for the broker to acknowledge the message.
	StatePublishing
	// StateDone means the message was acknowledged.
	StateDone
	// StateError means the connection or the publish failed.
	StateError
	// StateTimedOut means the deadline passed first.
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StatePublishing:
		return "Publishing"
	case StateDone:
		return "Done"
	case StateError:
		return "Error"
	case StateTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError || s == StateTimedOut
}
