package keystudio

import (
	"bytes"
	"encoding/json"
)

type MessageKind int

const (
	// MessagePlain carries only a role and content.
	MessagePlain MessageKind = iota
	// MessageToolCalls is an assistant turn with at least one tool call.
	MessageToolCalls
	// MessageHinted carries a builder node-type hint in additional_kwargs.
	MessageHinted
)

func (k MessageKind) String() string {
	switch k {
	case MessageToolCalls:
		return "tool_calls"
	case MessageHinted:
		return "hinted"
	default:
		return "plain"
	}
}

// Message is one transcript entry, resolved to its variant.
type Message struct {
	Kind MessageKind
	Role string
	// Content is the raw content field; Text is its normalized form.
	Content json.RawMessage
	Text    string
	// NodeType is additional_kwargs.node_metadata.nodeType.
	NodeType  string
	ToolCalls []ToolCall
}

// ToolCall is a call recorded in either the {name, args} or the
// {function: {name, arguments}} shape. Arguments keeps the raw JSON so object
// key order survives serialization.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ArgumentString serializes the call arguments. Strings pass through, other
// values become compact JSON, and absent or falsy arguments become "{}".
func (c ToolCall) ArgumentString() string {
	if isFalsy(c.Arguments) {
		return "{}"
	}
	trimmed := bytes.TrimSpace(c.Arguments)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// DecodeTranscript parses a JSON array of transcript messages.
func DecodeTranscript(data []byte) ([]Message, error) {
	elems, err := decodeArray("transcript", data)
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(elems))
	for _, raw := range elems {
		msgs = append(msgs, parseMessage(raw))
	}
	return msgs, nil
}

func parseMessage(raw json.RawMessage) Message {
	obj := asObject(raw)

	msg := Message{
		Role:     obj.str("role"),
		Content:  obj["content"],
		NodeType: obj.obj("additional_kwargs").obj("node_metadata").str("nodeType"),
	}
	msg.Text = NormalizeContent(msg.Content)

	if msg.Role == "assistant" {
		for _, callRaw := range obj.array("tool_calls") {
			msg.ToolCalls = append(msg.ToolCalls, parseToolCall(callRaw))
		}
	}

	switch {
	case len(msg.ToolCalls) > 0:
		msg.Kind = MessageToolCalls
	case msg.NodeType != "":
		msg.Kind = MessageHinted
	default:
		msg.Kind = MessagePlain
	}
	return msg
}

func parseToolCall(raw json.RawMessage) ToolCall {
	obj := asObject(raw)
	fn := obj.obj("function")

	call := ToolCall{ID: obj.str("id")}

	call.Name = obj.str("name")
	if call.Name == "" {
		call.Name = fn.str("name")
	}

	call.Arguments = obj["args"]
	if isFalsy(call.Arguments) {
		call.Arguments = fn["arguments"]
	}
	return call
}

// isFalsy reports whether raw is absent, null, false, zero or the empty string.
func isFalsy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", "false", `""`:
		return true
	}
	if trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9') {
		var f float64
		if err := json.Unmarshal(trimmed, &f); err == nil && f == 0 {
			return true
		}
	}
	return false
}
