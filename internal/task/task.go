// Package task persists image-generation tasks and drives them through
// their status lifecycle.
package task

import (
	"errors"
	"time"

	"github.com/mamamia96/moviemosaic/internal/feed"
)

// Sentinel errors for the task package.
var (
	// ErrNotFound is returned when a task or result row does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status tracks task state. Values are persisted verbatim.
type Status string

const (
	StatusReady      Status = "READY"
	StatusQueued     Status = "QUEUED"
	StatusCollecting Status = "COLLECTING DATA"
	StatusError      Status = "ERROR"
	StatusComplete   Status = "COMPLETE"
)

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
// Transitions are one-directional; no status ever regresses.
var validTransitions = map[Status][]Status{
	StatusReady:      {StatusQueued},
	StatusQueued:     {StatusCollecting},
	StatusCollecting: {StatusError, StatusComplete},
	StatusError:      {}, // terminal
	StatusComplete:   {}, // terminal
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this status has no valid outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusError || s == StatusComplete
}

// Task is one unit of image-generation work.
type Task struct {
	ID        int64
	User      string
	Mode      feed.Mode
	Status    Status
	ErrorMsg  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result is the rendered image for a completed task. Created once, never
// mutated.
type Result struct {
	TaskID    int64
	Image     []byte
	CreatedOn time.Time
}
