package events

// Kind is the wire discriminant carried in every event's `type` field.
type Kind string

const (
	KindSessionUpdate          Kind = "session.update"
	KindInputAudioBufferAppend Kind = "input_audio_buffer.append"
	KindInputAudioBufferCommit Kind = "input_audio_buffer.commit"
	KindInputAudioBufferClear  Kind = "input_audio_buffer.clear"
	KindConversationItemCreate Kind = "conversation.item.create"
	KindResponseCreate         Kind = "response.create"

	KindSessionCreated                   Kind = "session.created"
	KindSessionUpdated                   Kind = "session.updated"
	KindInputAudioTranscriptionCompleted Kind = "conversation.item.input_audio_transcription.completed"
	KindResponseAudioTranscriptDone      Kind = "response.audio_transcript.done"
	KindResponseOutputItemDone           Kind = "response.output_item.done"
	KindResponseDone                     Kind = "response.done"
	KindError                            Kind = "error"
)

// Base carries the fields shared by every wire event.
type Base struct {
	Type    Kind   `json:"type"`
	EventID string `json:"event_id,omitempty"`
}

func NewBase(kind Kind) Base {
	return Base{Type: kind}
}

func (b Base) Kind() Kind { return b.Type }
func (b Base) ID() string { return b.EventID }

func (b *Base) SetEventID(id string) { b.EventID = id }

// ClientEvent is an event the client originates. SetEventID exists so the
// sender can stamp a generated id onto events constructed without one.
type ClientEvent interface {
	Kind() Kind
	ID() string
	SetEventID(id string)
}

// ServerEvent is an event received from the remote endpoint.
type ServerEvent interface {
	Kind() Kind
	ID() string
}
