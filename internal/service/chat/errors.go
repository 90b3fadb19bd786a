package chat

import "errors"

var (
	// ErrNoSession is returned by operations that need a session id before one exists.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidTransition is returned when an operation is not valid in the current phase.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrEmptyMessage is returned for blank chat input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyResponse is returned when the backend reports success without a body.
	ErrEmptyResponse = errors.New("backend returned an empty response")
	// ErrClosed is returned once the orchestrator has been closed.
	ErrClosed = errors.New("orchestrator closed")
)
