package realtime

import (
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/tvrdic/voxlink-core/core/events"
	"github.com/tvrdic/voxlink-core/core/transport"
)

// Registry is the single source of truth for session records. Every
// mutation goes through its command methods and is serialized by one lock;
// events for different sessions can interleave without corrupting either
// record. Update/append commands against an unknown id are no-ops so
// late-arriving events for a removed session stay harmless.
type Registry struct {
	mu      sync.Mutex
	order   []string
	records map[string]*SessionRecord
}

func NewRegistry() *Registry {
	return &Registry{records: map[string]*SessionRecord{}}
}

// SessionUpdate is the partial-mutation command applied by UpdateSession.
// Nil fields are left untouched. Config is merged field-by-field, zero
// fields ignored, so it works as a session.update-style patch.
type SessionUpdate struct {
	State          *ConnectionState
	Config         *events.SessionConfig
	RemoteTrack    transport.RemoteTrack
	EndTime        *time.Time
	Duration       *time.Duration
	ReleaseHandles bool
}

// AddSession inserts a record. A record with the same id is replaced
// deterministically, keeping its original position in insertion order.
func (r *Registry) AddSession(record SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.records[record.ID] = &record
}

// RemoveSession deletes a record. Unknown id is a no-op.
func (r *Registry) RemoveSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return
	}
	delete(r.records, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// UpdateSession applies a partial update. Unknown id is a no-op.
func (r *Registry) UpdateSession(id string, update SessionUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return
	}

	if update.State != nil {
		record.State = *update.State
	}
	if update.Config != nil {
		if err := copier.CopyWithOption(&record.Config, update.Config,
			copier.Option{IgnoreEmpty: true}); err != nil {
			logger.Warn("failed to merge session configuration",
				"session_id", id, "error", err)
		}
	}
	if update.RemoteTrack != nil {
		record.RemoteTrack = update.RemoteTrack
	}
	if update.EndTime != nil {
		record.EndTime = update.EndTime
	}
	if update.Duration != nil {
		record.Duration = *update.Duration
	}
	if update.ReleaseHandles {
		record.Transport = nil
		record.Channel = nil
	}
}

// AppendTranscript appends in arrival order. Unknown id is a no-op.
func (r *Registry) AppendTranscript(id string, transcript Transcript) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, exists := r.records[id]; exists {
		record.Transcripts = append(record.Transcripts, transcript)
	}
}

// AppendError appends in arrival order. Unknown id is a no-op.
func (r *Registry) AppendError(id string, sessionError SessionError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, exists := r.records[id]; exists {
		record.Errors = append(record.Errors, sessionError)
	}
}

// SetTokenUsage overwrites the usage snapshot wholesale, latest wins.
// Unknown id is a no-op.
func (r *Registry) SetTokenUsage(id string, usage TokenUsage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, exists := r.records[id]; exists {
		record.Usage = &usage
	}
}

// SetMuted flips the mute flag. Unknown id is a no-op.
func (r *Registry) SetMuted(id string, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, exists := r.records[id]; exists {
		record.Muted = muted
	}
}

// GetByID returns a snapshot of the record. Absence is an expected steady
// state before creation and after removal, not an error.
func (r *Registry) GetByID(id string) (SessionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return SessionRecord{}, false
	}
	return record.snapshot(), true
}

// Sessions returns snapshots in insertion order.
func (r *Registry) Sessions() []SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]SessionRecord, 0, len(r.order))
	for _, id := range r.order {
		sessions = append(sessions, r.records[id].snapshot())
	}
	return sessions
}

// Len reports how many records the registry holds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
