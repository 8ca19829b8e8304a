package convert

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/harunnryd/studioport/internal/keystudio"
)

// executedPattern finds the real tool name in an execution log line such as
// "Executed **web_search** in 120ms".
var executedPattern = regexp.MustCompile(`(?i)executed \*\*([^*]+)\*\*`)

var standardRoles = map[string]bool{
	openai.ChatMessageRoleSystem:    true,
	openai.ChatMessageRoleUser:      true,
	openai.ChatMessageRoleAssistant: true,
	openai.ChatMessageRoleTool:      true,
	openai.ChatMessageRoleFunction:  true,
	openai.ChatMessageRoleDeveloper: true,
}

// State is the accumulator threaded through the reconstruction fold.
// Pending holds tool-call ids awaiting a response, oldest first.
type State struct {
	Pending  []string
	Messages []openai.ChatCompletionMessage
}

// Reconstructor rebuilds a chat-completion message sequence from a builder
// transcript. It holds no per-run state; each Reconstruct call starts from an
// empty State.
type Reconstructor struct {
	names NameMap
	ids   IDGenerator
}

func NewReconstructor(names NameMap, ids IDGenerator) *Reconstructor {
	if names == nil {
		names = NameMap{}
	}
	if ids == nil {
		ids = ULIDGenerator()
	}
	return &Reconstructor{names: names, ids: ids}
}

// Reconstruct folds Step over the transcript from left to right.
func (r *Reconstructor) Reconstruct(transcript []keystudio.Message) []openai.ChatCompletionMessage {
	var st State
	for i := range transcript {
		st = r.Step(st, transcript, i)
	}

	if len(st.Pending) > 0 {
		slog.Debug("Dropping unanswered tool calls", "count", len(st.Pending), "ids", st.Pending)
	}
	return st.Messages
}

// Step applies transcript[i] to st. transcript[i+1], when present, is used as
// lookahead for tool-name recovery. The returned State supersedes st; st must
// not be stepped again.
func (r *Reconstructor) Step(st State, transcript []keystudio.Message, i int) State {
	msg := transcript[i]

	if msg.Kind == keystudio.MessageToolCalls {
		var next *keystudio.Message
		if i+1 < len(transcript) {
			next = &transcript[i+1]
		}
		return r.emitToolCalls(st, msg, next, i)
	}

	role, isResponse := resolveRole(msg, len(st.Pending) > 0)
	if isResponse {
		id := st.Pending[0]
		st.Pending = st.Pending[1:]
		st.Messages = append(st.Messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: id,
			Content:    msg.Text,
		})
		return st
	}

	if strings.TrimSpace(msg.Text) == "" {
		slog.Debug("Dropping empty message", "index", i, "role", msg.Role)
		return st
	}

	st.Messages = append(st.Messages, openai.ChatCompletionMessage{
		Role:    role,
		Content: msg.Text,
	})
	return st
}

func (r *Reconstructor) emitToolCalls(st State, msg keystudio.Message, next *keystudio.Message, index int) State {
	calls := make([]openai.ToolCall, 0, len(msg.ToolCalls))
	for j, call := range msg.ToolCalls {
		id := call.ID
		if id == "" {
			id = r.ids.NewCallID(index, j)
			slog.Debug("Synthesized tool call id", "index", index, "call", j, "id", id)
		}

		calls = append(calls, openai.ToolCall{
			ID:   id,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      r.resolveCallName(call.Name, next),
				Arguments: call.ArgumentString(),
			},
		})
		st.Pending = append(st.Pending, id)
	}

	st.Messages = append(st.Messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   msg.Text,
		ToolCalls: calls,
	})
	return st
}

// resolveCallName maps a recorded call name to its canonical name. A name the
// tool list does not know is first corrected from an "Executed **name**" line
// in the next message.
func (r *Reconstructor) resolveCallName(raw string, next *keystudio.Message) string {
	if !r.names.Has(raw) && next != nil {
		if m := executedPattern.FindStringSubmatch(next.Text); m != nil {
			recovered := strings.TrimSpace(m[1])
			slog.Debug("Recovered tool name from execution log", "recorded", raw, "recovered", recovered)
			raw = recovered
		}
	}
	return r.names.Resolve(raw)
}

// resolveRole picks the output role for a message without tool calls.
// isResponse reports that the message answers the oldest pending call.
func resolveRole(msg keystudio.Message, hasPending bool) (role string, isResponse bool) {
	// An explicit tool role answers the oldest pending call. With nothing
	// pending there is no id to attach, and a tool message without
	// tool_call_id is invalid, so it is emitted as assistant text.
	if msg.Role == openai.ChatMessageRoleTool {
		if hasPending {
			return openai.ChatMessageRoleTool, true
		}
		return openai.ChatMessageRoleAssistant, false
	}
	if standardRoles[msg.Role] {
		return msg.Role, false
	}

	if msg.NodeType != "" {
		switch msg.NodeType {
		case "tool", "script":
			if hasPending {
				return openai.ChatMessageRoleTool, true
			}
		}
		return openai.ChatMessageRoleAssistant, false
	}

	if hasPending {
		return openai.ChatMessageRoleTool, true
	}
	return openai.ChatMessageRoleAssistant, false
}
