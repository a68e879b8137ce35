package events

// Role attributes a conversation item or transcript to its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Item types.
const (
	ItemTypeMessage            = "message"
	ItemTypeFunctionCall       = "function_call"
	ItemTypeFunctionCallOutput = "function_call_output"
)

// Content part types.
const (
	ContentTypeInputText  = "input_text"
	ContentTypeInputAudio = "input_audio"
	ContentTypeText       = "text"
	ContentTypeAudio      = "audio"
)

// Item is a conversation entry: a message with content parts, or a function
// call and its name/arguments pair.
type Item struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type,omitempty"`
	Status    string        `json:"status,omitempty"`
	Role      Role          `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	Name      string        `json:"name,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
}

// ContentPart is one piece of an item's content.
type ContentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// NewUserTextItem builds a message item holding a single input-text part.
func NewUserTextItem(text string) Item {
	return Item{
		Type: ItemTypeMessage,
		Role: RoleUser,
		Content: []ContentPart{
			{Type: ContentTypeInputText, Text: text},
		},
	}
}

// NewFunctionCallOutputItem builds the reply item for a completed function
// call.
func NewFunctionCallOutputItem(callID, output string) Item {
	return Item{
		Type:   ItemTypeFunctionCallOutput,
		CallID: callID,
		Output: output,
	}
}
