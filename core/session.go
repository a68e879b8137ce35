package realtime

import (
	"slices"
	"time"

	"github.com/tvrdic/voxlink-core/core/events"
	"github.com/tvrdic/voxlink-core/core/transport"
)

// Modality is a capability a session is created with.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// ConnectionState tracks a session's transport lifecycle. Transitions are
// monotonic; Failed and Closed are terminal.
type ConnectionState string

const (
	ConnectionStateConnecting ConnectionState = "connecting"
	ConnectionStateConnected  ConnectionState = "connected"
	ConnectionStateFailed     ConnectionState = "failed"
	ConnectionStateClosed     ConnectionState = "closed"
)

// TranscriptType distinguishes recognized user speech from generated model
// output.
type TranscriptType string

const (
	TranscriptInput  TranscriptType = "input"
	TranscriptOutput TranscriptType = "output"
)

// Transcript is one finalized piece of recognized or generated text.
// Immutable once appended.
type Transcript struct {
	Content   string
	Timestamp time.Time
	Type      TranscriptType
	Role      events.Role
}

// SessionError is one endpoint-reported protocol error. Immutable once
// appended.
type SessionError struct {
	EventID        string
	Type           string
	Code           string
	Message        string
	Param          string
	RelatedEventID string
	Timestamp      time.Time
}

// TokenUsage is the latest-wins token accounting snapshot, overwritten
// wholesale on every response completion.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// SessionRecord is the complete state of one session. Owned by the
// Registry; mutated only through its command set.
type SessionRecord struct {
	ID         string
	Modalities []Modality
	Config     events.SessionConfig

	State       ConnectionState
	Transport   transport.Connection
	Channel     transport.DataChannel
	RemoteTrack transport.RemoteTrack

	Transcripts []Transcript
	Errors      []SessionError
	Usage       *TokenUsage
	Muted       bool

	StartTime time.Time
	EndTime   *time.Time
	Duration  time.Duration
}

// HasModality reports whether the session was created with the given
// capability.
func (r SessionRecord) HasModality(modality Modality) bool {
	return slices.Contains(r.Modalities, modality)
}

// snapshot returns a copy safe to hand out: slice storage is cloned so
// later appends never alias a reader's view.
func (r *SessionRecord) snapshot() SessionRecord {
	copied := *r
	copied.Modalities = slices.Clone(r.Modalities)
	copied.Transcripts = slices.Clone(r.Transcripts)
	copied.Errors = slices.Clone(r.Errors)
	if r.Usage != nil {
		usage := *r.Usage
		copied.Usage = &usage
	}
	return copied
}
