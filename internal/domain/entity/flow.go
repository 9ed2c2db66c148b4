package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTransition = errors.New("invalid flow state transition")

type FlowState int

const (
	FlowNotStarted FlowState = iota
	FlowInProgress
	FlowConfirmed
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowNotStarted:
		return "not_started"
	case FlowInProgress:
		return "in_progress"
	case FlowConfirmed:
		return "confirmed"
	case FlowFailed:
		return "failed"
	default:
		return fmt.Sprintf("FlowState(%d)", int(s))
	}
}

func (s FlowState) Terminal() bool {
	return s == FlowConfirmed || s == FlowFailed
}

// Flow tracks one domain-level operation:
// NotStarted -> InProgress -> Confirmed | Failed.
type Flow struct {
	Name    string
	State   FlowState
	Result  Result
	Message string

	startedAt time.Time
	Elapsed   time.Duration
}

func NewFlow(name string) *Flow {
	return &Flow{Name: name, State: FlowNotStarted}
}

func (f *Flow) Start() error {
	if f.State != FlowNotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, f.State)
	}
	f.State = FlowInProgress
	f.startedAt = time.Now()
	return nil
}

func (f *Flow) Confirm(r Result) error {
	if f.State != FlowInProgress {
		return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, f.State)
	}
	if !r.OK() {
		return fmt.Errorf("%w: confirm with %s result", ErrInvalidTransition, r.Kind)
	}
	f.State = FlowConfirmed
	f.Result = r
	f.stop()
	return nil
}

// Fail moves the flow to its terminal Failed state and returns the matching
// *FlowError. Failing an already failed flow returns the original error.
func (f *Flow) Fail(r Result, message string) error {
	if f.State == FlowFailed {
		return &FlowError{Flow: f.Name, Message: f.Message, Result: f.Result}
	}
	if f.State == FlowConfirmed {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, f.State)
	}
	f.State = FlowFailed
	f.Result = r
	f.Message = message
	f.stop()
	return &FlowError{Flow: f.Name, Message: message, Result: r}
}

func (f *Flow) Confirmed() bool {
	return f.State == FlowConfirmed
}

func (f *Flow) stop() {
	if !f.startedAt.IsZero() {
		f.Elapsed = time.Since(f.startedAt)
	}
}

type FlowError struct {
	Flow    string
	Message string
	Result  Result
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("flow %s failed", e.Flow)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if err := e.Result.Err(); err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Result.Err()
}
