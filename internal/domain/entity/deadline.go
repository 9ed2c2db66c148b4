package entity

import (
	"fmt"
	"time"
)

const DefaultPollInterval = 100 * time.Millisecond

// Deadline bounds a wait: poll every PollInterval until Timeout elapses.
type Deadline struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

func NewDeadline(timeout, poll time.Duration) Deadline {
	return Deadline{Timeout: timeout, PollInterval: poll}
}

func DeadlineFromMillis(timeoutMs, pollIntervalMs int) Deadline {
	return Deadline{
		Timeout:      time.Duration(timeoutMs) * time.Millisecond,
		PollInterval: time.Duration(pollIntervalMs) * time.Millisecond,
	}
}

func (d Deadline) Validate() error {
	if d.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidDeadline, d.Timeout)
	}
	if d.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidDeadline, d.PollInterval)
	}
	if d.PollInterval > d.Timeout {
		return fmt.Errorf("%w: poll interval %v exceeds timeout %v", ErrInvalidDeadline, d.PollInterval, d.Timeout)
	}
	return nil
}

// WithTimeout returns a copy with a new timeout, clamping the poll interval
// so the result still validates.
func (d Deadline) WithTimeout(timeout time.Duration) Deadline {
	d.Timeout = timeout
	if d.PollInterval > timeout {
		d.PollInterval = timeout
	}
	return d
}

func (d Deadline) String() string {
	return fmt.Sprintf("%v/%v", d.Timeout, d.PollInterval)
}
