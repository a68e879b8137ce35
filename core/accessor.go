package realtime

import (
	"fmt"

	"github.com/tvrdic/voxlink-core/core/events"
)

// SessionHandle is a command/read surface bound to a single session id, for
// collaborators that should not see the whole registry. Unlike the
// manager's tolerant drop policy, every command on a handle whose id does
// not resolve fails fast with ErrSessionNotStarted: a bound caller using a
// session before creation completed is misuse, not a race.
type SessionHandle struct {
	manager *Manager
	id      string
}

// Handle binds a session id. The id may be set later via SetID when the
// handle outlives session recreation.
func (m *Manager) Handle(id string) *SessionHandle {
	return &SessionHandle{manager: m, id: id}
}

func (h *SessionHandle) ID() string      { return h.id }
func (h *SessionHandle) SetID(id string) { h.id = id }

// Session returns the current record snapshot.
func (h *SessionHandle) Session() (SessionRecord, error) {
	record, exists := h.manager.registry.GetByID(h.id)
	if !exists {
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotStarted, h.id)
	}
	return record, nil
}

func (h *SessionHandle) resolve() error {
	if _, exists := h.manager.registry.GetByID(h.id); !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotStarted, h.id)
	}
	return nil
}

func (h *SessionHandle) SendEvent(event events.ClientEvent) error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.SendEvent(h.id, event)
}

func (h *SessionHandle) SendText(message string) error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.SendText(h.id, message)
}

func (h *SessionHandle) SendAudioChunk(base64Audio string) error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.SendAudioChunk(h.id, base64Audio)
}

func (h *SessionHandle) CommitAudioBuffer() error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.CommitAudioBuffer(h.id)
}

func (h *SessionHandle) ClearAudioBuffer() error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.ClearAudioBuffer(h.id)
}

func (h *SessionHandle) CreateResponse(overrides *events.ResponseOverrides) error {
	if err := h.resolve(); err != nil {
		return err
	}
	return h.manager.CreateResponse(h.id, overrides)
}

func (h *SessionHandle) MuteAudio() error {
	if err := h.resolve(); err != nil {
		return err
	}
	h.manager.MuteAudio(h.id)
	return nil
}

func (h *SessionHandle) UnmuteAudio() error {
	if err := h.resolve(); err != nil {
		return err
	}
	h.manager.UnmuteAudio(h.id)
	return nil
}

func (h *SessionHandle) Close() error {
	if err := h.resolve(); err != nil {
		return err
	}
	h.manager.Close(h.id)
	return nil
}
