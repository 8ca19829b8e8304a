package convert

import (
	"bytes"
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Tool is one entry of the request's tools array. A target-shaped record
// keeps its source bytes in Raw and is emitted exactly as received; otherwise
// the embedded definition is encoded.
type Tool struct {
	openai.Tool
	Raw json.RawMessage `json:"-"`
}

type functionWire struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type toolWire struct {
	Type     openai.ToolType `json:"type"`
	Function *functionWire   `json:"function"`
}

func (t Tool) MarshalJSON() ([]byte, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}

	wire := toolWire{Type: t.Type}
	if t.Function != nil {
		wire.Function = &functionWire{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		}
	}
	return encodeJSON(wire)
}

// messageWire always carries content; go-openai omits it when empty, which
// chat-completion endpoints reject on tool messages.
type messageWire struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCalls  []openai.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

type requestWire struct {
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	ToolChoice  string        `json:"tool_choice"`
	Messages    []messageWire `json:"messages"`
	Tools       []Tool        `json:"tools"`
}

func (r Request) MarshalJSON() ([]byte, error) {
	messages := make([]messageWire, len(r.Messages))
	for i, msg := range r.Messages {
		messages[i] = messageWire{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCalls:  msg.ToolCalls,
			ToolCallID: msg.ToolCallID,
		}
	}

	tools := r.Tools
	if tools == nil {
		tools = []Tool{}
	}

	return encodeJSON(requestWire{
		Temperature: r.Temperature,
		TopP:        r.TopP,
		ToolChoice:  r.ToolChoice,
		Messages:    messages,
		Tools:       tools,
	})
}

// encodeJSON marshals v without HTML escaping so descriptions and arguments
// keep characters like < and & as written.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
