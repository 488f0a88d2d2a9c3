package chat

import "errors"

// Failure taxonomy for the send path. All of these are detected before any
// durable write except ErrInternal, which also covers append failures.
var (
	// ErrUnauthorized covers a missing session, a chat id the session is
	// not part of, and a counterparty outside the friend set.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest covers a chat id that does not parse into two ids.
	ErrBadRequest = errors.New("bad request")
	// ErrValidation covers a message that fails schema validation.
	ErrValidation = errors.New("message validation failed")
	// ErrInternal covers storage faults and unreadable profile records.
	// The whole request is safe to retry: nothing durable exists before
	// the log append, and the append itself is a single atomic command.
	ErrInternal = errors.New("internal error")
)
