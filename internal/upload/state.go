// Package upload drives a resume file through upload and backend processing,
// reporting globally meaningful progress until a record is available.
package upload

import "fmt"

// State is a controller state.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// transitions lists the legal next states. Completed and failed are absorbing
// and only Reset leaves them.
var transitions = map[State][]State{
	StateIdle:       {StateUploading},
	StateUploading:  {StateProcessing, StateFailed},
	StateProcessing: {StateProcessing, StateCompleted, StateFailed},
	StateCompleted:  nil,
	StateFailed:     nil,
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// TransitionError is returned when an illegal transition is attempted.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal upload transition %s -> %s", e.From, e.To)
}

// Mode selects single-file or batch processing.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// ParseMode converts a flag or form value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, "":
		return ModeSingle, nil
	case ModeBatch:
		return ModeBatch, nil
	default:
		return "", fmt.Errorf("unknown upload mode %q (expected single or batch)", s)
	}
}
