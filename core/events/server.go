package events

import "encoding/json"

// RemoteSession is the endpoint's view of a session: its id plus the
// negotiated configuration snapshot.
type RemoteSession struct {
	ID string `json:"id,omitempty"`
	SessionConfig
}

// SessionCreated confirms session establishment on the endpoint side.
type SessionCreated struct {
	Base
	Session RemoteSession `json:"session"`
}

// SessionUpdated acknowledges an applied session.update.
type SessionUpdated struct {
	Base
	Session RemoteSession `json:"session"`
}

// InputAudioTranscriptionCompleted carries the finalized transcript of a
// user speech segment.
type InputAudioTranscriptionCompleted struct {
	Base
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	Transcript   string `json:"transcript"`
}

// ResponseAudioTranscriptDone carries the finalized transcript of the
// model's synthesized speech.
type ResponseAudioTranscriptDone struct {
	Base
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Transcript   string `json:"transcript"`
}

// ResponseOutputItemDone marks one output item as complete. The item may be
// a function call the client is expected to execute.
type ResponseOutputItemDone struct {
	Base
	ResponseID  string `json:"response_id"`
	OutputIndex int    `json:"output_index"`
	Item        Item   `json:"item"`
}

// Response is the completion payload of a response.done event.
type Response struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Usage  *Usage `json:"usage,omitempty"`
}

// ResponseDone marks a full response as complete, including token usage.
type ResponseDone struct {
	Base
	Response Response `json:"response"`
}

// ErrorEvent reports a protocol-level error from the endpoint.
type ErrorEvent struct {
	Base
	Error ErrorDetail `json:"error"`
}

// Unknown preserves an unrecognized discriminant as an opaque payload.
// Receivers treat it as a no-op.
type Unknown struct {
	Base
	Raw json.RawMessage `json:"-"`
}
