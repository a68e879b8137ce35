package events

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseServerClassifiesByDiscriminant(t *testing.T) {
	event, err := ParseServer([]byte(`{
		"type": "conversation.item.input_audio_transcription.completed",
		"event_id": "evt-1",
		"item_id": "item-1",
		"content_index": 0,
		"transcript": "hello"
	}`))
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}

	transcription, ok := event.(InputAudioTranscriptionCompleted)
	if !ok {
		t.Fatalf("expected InputAudioTranscriptionCompleted, got %T", event)
	}
	if transcription.Transcript != "hello" || transcription.ItemID != "item-1" {
		t.Fatalf("unexpected payload: %+v", transcription)
	}
	if transcription.ID() != "evt-1" {
		t.Fatalf("expected event id to survive parsing, got %q", transcription.ID())
	}
}

func TestParseServerDecodesFunctionCallItems(t *testing.T) {
	event, err := ParseServer([]byte(`{
		"type": "response.output_item.done",
		"response_id": "resp-1",
		"output_index": 2,
		"item": {
			"type": "function_call",
			"name": "change_background",
			"call_id": "call-1",
			"arguments": "{\"color\":\"#ff0000\"}"
		}
	}`))
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}

	done, ok := event.(ResponseOutputItemDone)
	if !ok {
		t.Fatalf("expected ResponseOutputItemDone, got %T", event)
	}
	if done.Item.Type != ItemTypeFunctionCall || done.Item.Name != "change_background" {
		t.Fatalf("unexpected item: %+v", done.Item)
	}
	if done.OutputIndex != 2 {
		t.Fatalf("expected output index 2, got %d", done.OutputIndex)
	}
}

func TestParseServerDecodesUsage(t *testing.T) {
	event, err := ParseServer([]byte(`{
		"type": "response.done",
		"response": {
			"id": "resp-1",
			"status": "completed",
			"usage": {"input_tokens": 7, "output_tokens": 3, "total_tokens": 10}
		}
	}`))
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}

	done, ok := event.(ResponseDone)
	if !ok {
		t.Fatalf("expected ResponseDone, got %T", event)
	}
	if done.Response.Usage == nil || done.Response.Usage.TotalTokens != 10 {
		t.Fatalf("expected usage payload, got %+v", done.Response.Usage)
	}
}

func TestParseServerDecodesErrorPayload(t *testing.T) {
	event, err := ParseServer([]byte(`{
		"type": "error",
		"error": {"type": "invalid_request_error", "code": "bad", "message": "nope", "param": "item"}
	}`))
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}

	errorEvent, ok := event.(ErrorEvent)
	if !ok {
		t.Fatalf("expected ErrorEvent, got %T", event)
	}
	if errorEvent.Error.Code != "bad" || errorEvent.Error.Param != "item" {
		t.Fatalf("unexpected error payload: %+v", errorEvent.Error)
	}
}

func TestParseServerPassesUnknownKindsThrough(t *testing.T) {
	event, err := ParseServer([]byte(`{"type":"response.text.delta","delta":"h"}`))
	if err != nil {
		t.Fatalf("expected unknown kinds to parse, got %v", err)
	}

	unknown, ok := event.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", event)
	}
	if unknown.Kind() != Kind("response.text.delta") {
		t.Fatalf("expected discriminant preserved, got %q", unknown.Kind())
	}
	if len(unknown.Raw) == 0 {
		t.Fatalf("expected raw payload preserved")
	}
}

func TestParseServerRejectsMalformedEnvelope(t *testing.T) {
	if _, err := ParseServer([]byte(`{not json`)); err == nil {
		t.Fatalf("expected malformed payload to error")
	}
}

func TestClientEventsMarshalWithDiscriminantAndEventID(t *testing.T) {
	event := NewConversationItemCreate(NewUserTextItem("hello"))
	event.SetEventID("evt-42")

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}

	var decoded struct {
		Type    Kind   `json:"type"`
		EventID string `json:"event_id"`
		Item    Item   `json:"item"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("expected roundtrip decode to succeed, got %v", err)
	}
	if decoded.Type != KindConversationItemCreate || decoded.EventID != "evt-42" {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
	if decoded.Item.Role != RoleUser || len(decoded.Item.Content) != 1 ||
		decoded.Item.Content[0].Text != "hello" {
		t.Fatalf("unexpected item payload: %+v", decoded.Item)
	}
}

func TestAppendEventCarriesOnlyAudio(t *testing.T) {
	raw, err := json.Marshal(NewInputAudioBufferAppend("cGNt"))
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}

	payload := string(raw)
	if !strings.Contains(payload, `"type":"input_audio_buffer.append"`) ||
		!strings.Contains(payload, `"audio":"cGNt"`) {
		t.Fatalf("unexpected wire payload: %s", payload)
	}
	if strings.Contains(payload, "item") || strings.Contains(payload, "session") {
		t.Fatalf("append event leaked foreign fields: %s", payload)
	}
}

func TestResponseCreateOmitsEmptyOverrides(t *testing.T) {
	raw, err := json.Marshal(NewResponseCreate(nil))
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}
	if strings.Contains(string(raw), "response") {
		t.Fatalf("expected empty overrides to be omitted: %s", raw)
	}
}
