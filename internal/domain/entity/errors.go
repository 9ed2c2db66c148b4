package entity

import "errors"

var (
	ErrElementNotFound = errors.New("element not found")
	ErrStaleElement    = errors.New("element is stale or detached from the document")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrNoAlert         = errors.New("no alert present")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrInvalidLocator  = errors.New("invalid locator")
	ErrInvalidDeadline = errors.New("invalid deadline")
)
