package session

// State is the lifecycle position of a single transcription run.
type State int

const (
	// StateIdle is the initial state before the run starts.
	StateIdle State = iota
	// StateNormalizing covers media classification and audio extraction.
	StateNormalizing
	// StateTranscribing covers model load and recognition.
	StateTranscribing
	// StateAssembling covers document rendering and the final write.
	StateAssembling
	// StateDone is the successful terminal state.
	StateDone
	// StateFailed is the terminal state for any stage error.
	StateFailed
	// StateCancelled is the terminal state for a user interrupt.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNormalizing:
		return "normalizing"
	case StateTranscribing:
		return "transcribing"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}
