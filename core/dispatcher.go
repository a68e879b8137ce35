package realtime

import (
	"encoding/json"

	"github.com/tvrdic/voxlink-core/core/events"
)

// dispatch folds one inbound channel message into session state. It runs on
// the channel's delivery callback, synchronously to completion, so events
// mutate a session in strict arrival order. Malformed messages are logged
// and discarded; the channel stays open. Unknown discriminants are ignored.
func (m *Manager) dispatch(id string, raw []byte) {
	event, err := events.ParseServer(raw)
	if err != nil {
		logger.Warn("discarding malformed event", "session_id", id, "error", err)
		return
	}

	switch typedEvent := event.(type) {
	case events.SessionCreated:
		config := typedEvent.Session.SessionConfig
		m.registry.UpdateSession(id, SessionUpdate{Config: &config})

	case events.SessionUpdated:
		config := typedEvent.Session.SessionConfig
		m.registry.UpdateSession(id, SessionUpdate{Config: &config})

	case events.InputAudioTranscriptionCompleted:
		m.registry.AppendTranscript(id, Transcript{
			Content:   typedEvent.Transcript,
			Timestamp: m.now(),
			Type:      TranscriptInput,
			Role:      events.RoleUser,
		})

	case events.ResponseAudioTranscriptDone:
		m.registry.AppendTranscript(id, Transcript{
			Content:   typedEvent.Transcript,
			Timestamp: m.now(),
			Type:      TranscriptOutput,
			Role:      events.RoleAssistant,
		})

	case events.ResponseOutputItemDone:
		m.handleOutputItem(id, typedEvent.Item)

	case events.ResponseDone:
		if usage := typedEvent.Response.Usage; usage != nil {
			m.registry.SetTokenUsage(id, TokenUsage{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			})
		}

	case events.ErrorEvent:
		m.registry.AppendError(id, SessionError{
			EventID:        typedEvent.ID(),
			Type:           typedEvent.Error.Type,
			Code:           typedEvent.Error.Code,
			Message:        typedEvent.Error.Message,
			Param:          typedEvent.Error.Param,
			RelatedEventID: typedEvent.Error.EventID,
			Timestamp:      m.now(),
		})

	case events.Unknown:
		// Forward-compatible no-op.
	}
}

func (m *Manager) handleOutputItem(id string, item events.Item) {
	if item.Type != events.ItemTypeFunctionCall || m.onFunctionCall == nil {
		return
	}

	arguments := map[string]any{}
	if item.Arguments != "" {
		if err := json.Unmarshal([]byte(item.Arguments), &arguments); err != nil {
			logger.Warn("discarding function call with malformed arguments",
				"session_id", id, "function", item.Name, "error", err)
			return
		}
	}
	m.onFunctionCall(id, item.Name, arguments)
}
