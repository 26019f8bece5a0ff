package lifecycle

import (
	"errors"
	"fmt"
)

// Status is a session's lifecycle state. Transitions only move forward;
// terminal states are absorbing.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	return from == StatusInProgress && to.Terminal()
}

// Transition validates a state change, returning the new status or a
// wrapped ErrInvalidTransition naming both states.
func Transition(from, to Status) (Status, error) {
	if !from.Valid() || !to.Valid() {
		return from, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return to, nil
}
