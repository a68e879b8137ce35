package events

// SessionUpdate pushes a partial configuration to the endpoint.
type SessionUpdate struct {
	Base
	Session SessionConfig `json:"session"`
}

func NewSessionUpdate(session SessionConfig) *SessionUpdate {
	return &SessionUpdate{Base: NewBase(KindSessionUpdate), Session: session}
}

// InputAudioBufferAppend carries one base64-encoded PCM16 chunk.
type InputAudioBufferAppend struct {
	Base
	Audio string `json:"audio"`
}

func NewInputAudioBufferAppend(audio string) *InputAudioBufferAppend {
	return &InputAudioBufferAppend{Base: NewBase(KindInputAudioBufferAppend), Audio: audio}
}

// InputAudioBufferCommit closes the current input audio turn.
type InputAudioBufferCommit struct {
	Base
}

func NewInputAudioBufferCommit() *InputAudioBufferCommit {
	return &InputAudioBufferCommit{Base: NewBase(KindInputAudioBufferCommit)}
}

// InputAudioBufferClear discards buffered input audio without committing it.
type InputAudioBufferClear struct {
	Base
}

func NewInputAudioBufferClear() *InputAudioBufferClear {
	return &InputAudioBufferClear{Base: NewBase(KindInputAudioBufferClear)}
}

// ConversationItemCreate injects an item into the conversation.
type ConversationItemCreate struct {
	Base
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

func NewConversationItemCreate(item Item) *ConversationItemCreate {
	return &ConversationItemCreate{Base: NewBase(KindConversationItemCreate), Item: item}
}

// ResponseOverrides is the optional body of a response.create event. Fields
// left zero fall back to the session configuration.
type ResponseOverrides struct {
	Modalities   []string `json:"modalities,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Voice        string   `json:"voice,omitempty"`
	Tools        []Tool   `json:"tools,omitempty"`
	Temperature  float64  `json:"temperature,omitempty"`
}

// ResponseCreate asks the model to generate a response.
type ResponseCreate struct {
	Base
	Response *ResponseOverrides `json:"response,omitempty"`
}

func NewResponseCreate(overrides *ResponseOverrides) *ResponseCreate {
	return &ResponseCreate{Base: NewBase(KindResponseCreate), Response: overrides}
}
