package events

import (
	"encoding/json"
	"fmt"
)

// ParseServer decodes one raw data-channel message into its concrete server
// event. Unrecognized discriminants come back as Unknown rather than an
// error so newer endpoint versions stay compatible.
func ParseServer(raw []byte) (ServerEvent, error) {
	var peek struct {
		Type    Kind   `json:"type"`
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return nil, fmt.Errorf("failed to parse event envelope: %w", err)
	}

	switch peek.Type {
	case KindSessionCreated:
		var event SessionCreated
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindSessionUpdated:
		var event SessionUpdated
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindInputAudioTranscriptionCompleted:
		var event InputAudioTranscriptionCompleted
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindResponseAudioTranscriptDone:
		var event ResponseAudioTranscriptDone
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindResponseOutputItemDone:
		var event ResponseOutputItemDone
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindResponseDone:
		var event ResponseDone
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	case KindError:
		var event ErrorEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to parse %s event: %w", peek.Type, err)
		}
		return event, nil
	default:
		return Unknown{
			Base: Base{Type: peek.Type, EventID: peek.EventID},
			Raw:  json.RawMessage(raw),
		}, nil
	}
}
