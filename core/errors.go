package realtime

import "errors"

var (
	// ErrUnknownSession reports a command against an id the registry does
	// not hold. The command is dropped, never escalated.
	ErrUnknownSession = errors.New("unknown session")

	// ErrChannelNotReady reports a send attempted before the data channel
	// opened or after it closed. The event is dropped, never escalated.
	ErrChannelNotReady = errors.New("data channel is not ready")

	// ErrSessionNotStarted is the accessor facade's fail-fast signal for
	// commands issued before the session was created.
	ErrSessionNotStarted = errors.New("session not started")
)
