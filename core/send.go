package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tvrdic/voxlink-core/core/audio"
	"github.com/tvrdic/voxlink-core/core/events"
)

// SendEvent serializes and transmits one client event on the session's
// channel, stamping a generated event_id if the event has none. Sends
// against an unknown session or a channel that is not open are reported and
// dropped rather than escalated: a caller may legitimately race a send
// against a session that just closed.
func (m *Manager) SendEvent(id string, event events.ClientEvent) error {
	record, exists := m.registry.GetByID(id)
	if !exists {
		logger.Warn("dropping event for unknown session",
			"session_id", id, "event_type", event.Kind())
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if record.Channel == nil || !record.Channel.Ready() {
		logger.Warn("dropping event, channel not ready",
			"session_id", id, "event_type", event.Kind())
		return ErrChannelNotReady
	}

	if event.ID() == "" {
		event.SetEventID(m.newEventID())
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Kind(), err)
	}
	if err := record.Channel.Send(raw); err != nil {
		return fmt.Errorf("failed to send %s event: %w", event.Kind(), err)
	}
	return nil
}

// SendText injects a user text message into the conversation. It does not
// request a response; that is a separate explicit or VAD-triggered action.
func (m *Manager) SendText(id string, message string) error {
	return m.SendEvent(id, events.NewConversationItemCreate(events.NewUserTextItem(message)))
}

// SendAudioChunk appends one base64-encoded PCM16 chunk to the input audio
// buffer.
func (m *Manager) SendAudioChunk(id string, base64Audio string) error {
	return m.SendEvent(id, events.NewInputAudioBufferAppend(base64Audio))
}

// SendAudio base64-encodes a raw PCM16 chunk and appends it.
func (m *Manager) SendAudio(id string, pcm []byte) error {
	return m.SendAudioChunk(id, audio.EncodeChunk(pcm))
}

// CommitAudioBuffer closes the current input turn.
func (m *Manager) CommitAudioBuffer(id string) error {
	return m.SendEvent(id, events.NewInputAudioBufferCommit())
}

// ClearAudioBuffer discards buffered input audio.
func (m *Manager) ClearAudioBuffer(id string) error {
	return m.SendEvent(id, events.NewInputAudioBufferClear())
}

// CreateResponse asks the model to respond, optionally overriding session
// defaults for this response only.
func (m *Manager) CreateResponse(id string, overrides *events.ResponseOverrides) error {
	return m.SendEvent(id, events.NewResponseCreate(overrides))
}

// SendFunctionCallOutput returns a function call's result to the model.
func (m *Manager) SendFunctionCallOutput(id string, callID string, output string) error {
	return m.SendEvent(id, events.NewConversationItemCreate(
		events.NewFunctionCallOutputItem(callID, output)))
}

// UpdateConfig pushes a partial configuration to the endpoint and merges it
// into the local snapshot.
func (m *Manager) UpdateConfig(id string, patch events.SessionConfig) error {
	if err := m.SendEvent(id, events.NewSessionUpdate(patch)); err != nil {
		return err
	}
	m.registry.UpdateSession(id, SessionUpdate{Config: &patch})
	return nil
}

// WriteAudio streams raw PCM into the session's local media track, for
// transports that negotiated one.
func (m *Manager) WriteAudio(id string, pcm []byte) error {
	m.mu.Lock()
	writer := m.writers[id]
	m.mu.Unlock()

	if writer == nil {
		return fmt.Errorf("%w: no local audio track", ErrUnknownSession)
	}

	duration := audio.GetDefaultEncodingInfo().ChunkDuration(len(pcm))
	if duration == 0 {
		duration = 20 * time.Millisecond
	}
	return writer.WriteAudio(pcm, duration)
}

// MuteAudio silences remote audio playback without closing the media
// stream. The playback sink's mute flag tracks the registry state.
func (m *Manager) MuteAudio(id string) {
	m.setMuted(id, true)
}

// UnmuteAudio resumes remote audio playback.
func (m *Manager) UnmuteAudio(id string) {
	m.setMuted(id, false)
}

func (m *Manager) setMuted(id string, muted bool) {
	m.registry.SetMuted(id, muted)
	if m.output != nil {
		m.output.SetMuted(muted)
	}
}
