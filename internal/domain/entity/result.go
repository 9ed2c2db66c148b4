package entity

import (
	"fmt"
	"strings"
	"time"
)

type ResultKind int

// The zero ResultKind is never a success.
const (
	ResultUnknown ResultKind = iota
	ResultSuccess
	ResultNotFound
	ResultTimeout
	ResultTransientError
)

func (k ResultKind) String() string {
	switch k {
	case ResultUnknown:
		return "unknown"
	case ResultSuccess:
		return "success"
	case ResultNotFound:
		return "not_found"
	case ResultTimeout:
		return "timeout"
	case ResultTransientError:
		return "transient_error"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of every interaction-layer call. Expected absence is
// reported through Kind rather than a Go error.
type Result struct {
	Kind    ResultKind
	Value   string
	Element ElementHandle
	Cause   error

	Locator   Locator
	Condition WaitCondition
	Elapsed   time.Duration
	Attempts  int
	// Unconfirmed marks an action that was dispatched but whose
	// post-condition never held.
	Unconfirmed bool
}

func Succeeded(el ElementHandle) Result {
	return Result{Kind: ResultSuccess, Element: el}
}

func NotFound(loc Locator) Result {
	return Result{Kind: ResultNotFound, Locator: loc}
}

func TimedOut(cond WaitCondition) Result {
	return Result{Kind: ResultTimeout, Condition: cond, Locator: cond.Locator}
}

func Transient(cause error) Result {
	return Result{Kind: ResultTransientError, Cause: cause}
}

func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}

// Retryable reports whether the outcome means "content not ready yet".
func (r Result) Retryable() bool {
	return r.Kind == ResultNotFound || r.Kind == ResultTimeout
}

// Err converts a non-success result into an *InteractionError. It returns nil
// on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &InteractionError{
		Kind:        r.Kind,
		Locator:     r.Locator,
		Condition:   r.Condition,
		Elapsed:     r.Elapsed,
		Attempts:    r.Attempts,
		Unconfirmed: r.Unconfirmed,
		Cause:       r.Cause,
	}
}

func (r Result) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	if r.Value != "" {
		return fmt.Sprintf("success (%q)", r.Value)
	}
	return "success"
}

type InteractionError struct {
	Kind        ResultKind
	Locator     Locator
	Condition   WaitCondition
	Elapsed     time.Duration
	Attempts    int
	Unconfirmed bool
	Cause       error
}

func (e *InteractionError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if !e.Condition.IsZero() {
		fmt.Fprintf(&sb, " waiting for %s", e.Condition)
	} else if !e.Locator.IsZero() {
		fmt.Fprintf(&sb, " for %s", e.Locator)
	}
	if e.Unconfirmed {
		sb.WriteString(" (action dispatched, effect unconfirmed)")
	}
	if e.Elapsed > 0 {
		fmt.Fprintf(&sb, " after %s", e.Elapsed.Round(time.Millisecond))
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&sb, " in %d attempts", e.Attempts)
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *InteractionError) Unwrap() error {
	return e.Cause
}
