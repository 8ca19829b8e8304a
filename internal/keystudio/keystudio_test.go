package keystudio

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spErrors "github.com/harunnryd/studioport/internal/errors"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "absent", raw: "", want: ""},
		{name: "null", raw: "null", want: ""},
		{name: "string", raw: `"hi there"`, want: "hi there"},
		{name: "text blocks", raw: `[{"type":"text","text":"hello"},{"type":"text","text":"world"}]`, want: "hello\nworld"},
		{name: "skips non-text and empty blocks", raw: `[{"type":"image","text":"x"},{"type":"text","text":""},{"type":"text","text":"kept"},7]`, want: "kept"},
		{name: "object keeps key order", raw: `{"b": 1, "a": [true]}`, want: `{"b":1,"a":[true]}`},
		{name: "number", raw: `42`, want: "42"},
		{name: "exponent number", raw: `1e2`, want: "100"},
		{name: "trailing zero fraction", raw: `1.0`, want: "1"},
		{name: "fraction", raw: `-0.25`, want: "-0.25"},
		{name: "bool", raw: `false`, want: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContent(json.RawMessage(tt.raw)))
		})
	}
}

func TestDecodeTools_RejectsMalformedInput(t *testing.T) {
	inputs := map[string]string{
		"blank":      "  ",
		"not json":   "[{",
		"object":     `{"name":"x"}`,
		"empty list": "[]",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTools([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, spErrors.ErrInvalidInput))
		})
	}
}

func TestDecodeTools_Variants(t *testing.T) {
	data := []byte(`[
		{"id":"1","name":"search","alias":"web_search","description":"d","type":"tool","config":{"schema":{"type":"object"}}},
		{"type":"function","function":{"name":"lookup","description":"l","parameters":{"type":"object","properties":{}}}},
		{"name":"fallback","function":{"parameters":{"type":"object","properties":{"q":{"type":"string"}}}}},
		{"type":"function"},
		null,
		{"name": 12, "alias": null}
	]`)

	records, err := DecodeTools(data)
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, ToolLegacy, records[0].Kind)
	assert.Equal(t, "web_search", records[0].CanonicalName())
	assert.Equal(t, map[string]any{"type": "object"}, records[0].Schema)

	require.Equal(t, ToolTarget, records[1].Kind)
	assert.JSONEq(t, `{"type":"function","function":{"name":"lookup","description":"l","parameters":{"type":"object","properties":{}}}}`, string(records[1].Raw))
	assert.Equal(t, "lookup", records[1].CanonicalName())

	assert.Equal(t, ToolLegacy, records[2].Kind)
	assert.Equal(t, "fallback", records[2].CanonicalName())
	assert.Contains(t, records[2].Schema, "properties")

	assert.Equal(t, ToolLegacy, records[3].Kind, "function type without payload stays legacy")
	assert.Nil(t, records[3].Schema)

	assert.Equal(t, UnknownFunction, records[4].CanonicalName())
	assert.Equal(t, UnknownFunction, records[5].CanonicalName())
}

func TestDecodeTools_TargetShapeKeptVerbatim(t *testing.T) {
	target := `{"type":"function","function":{"name":"lookup","description":"","strict":"yes","parameters":{"type":"object","properties":{}},"x_meta":1},"x_top":true}`

	records, err := DecodeTools([]byte("[\n  " + target + "\n]"))
	require.NoError(t, err, "a wrongly typed field in a target record must not reject the list")
	require.Len(t, records, 1)

	assert.Equal(t, ToolTarget, records[0].Kind)
	assert.Equal(t, target, string(records[0].Raw))
	assert.Equal(t, "lookup", records[0].CanonicalName())
}

func TestDecodeTranscript_Variants(t *testing.T) {
	data := []byte(`[
		{"role":"assistant","content":"calling","tool_calls":[
			{"id":"c1","name":"search","args":{"q":"x","a":1}},
			{"function":{"name":"lookup","arguments":"{\"id\":2}"}},
			{"name":"noargs","args":""}
		]},
		{"role":"tool_node","additional_kwargs":{"node_metadata":{"nodeType":"tool"}},"content":"result"},
		{"role":"user","content":[{"type":"text","text":"hello"}]},
		{"role":"user","tool_calls":[{"name":"ignored"}],"content":"u"},
		{"role":"assistant","tool_calls":[]}
	]`)

	msgs, err := DecodeTranscript(data)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	first := msgs[0]
	assert.Equal(t, MessageToolCalls, first.Kind)
	require.Len(t, first.ToolCalls, 3)
	assert.Equal(t, "c1", first.ToolCalls[0].ID)
	assert.Equal(t, "search", first.ToolCalls[0].Name)
	assert.Equal(t, `{"q":"x","a":1}`, first.ToolCalls[0].ArgumentString())
	assert.Equal(t, "lookup", first.ToolCalls[1].Name)
	assert.Equal(t, `{"id":2}`, first.ToolCalls[1].ArgumentString())
	assert.Equal(t, "{}", first.ToolCalls[2].ArgumentString())

	assert.Equal(t, MessageHinted, msgs[1].Kind)
	assert.Equal(t, "tool", msgs[1].NodeType)
	assert.Equal(t, "result", msgs[1].Text)

	assert.Equal(t, MessagePlain, msgs[2].Kind)
	assert.Equal(t, "hello", msgs[2].Text)

	assert.Equal(t, MessagePlain, msgs[3].Kind, "tool_calls only count on assistant turns")
	assert.Empty(t, msgs[3].ToolCalls)

	assert.Equal(t, MessagePlain, msgs[4].Kind)
}

func TestToolCallArgumentString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "{}"},
		{"null", "{}"},
		{"false", "{}"},
		{"0", "{}"},
		{`""`, "{}"},
		{`"already"`, "already"},
		{`{ "k" : "v" }`, `{"k":"v"}`},
		{`[1, 2]`, `[1,2]`},
		{`5`, `5`},
	}

	for _, tt := range tests {
		call := ToolCall{Arguments: json.RawMessage(tt.raw)}
		assert.Equal(t, tt.want, call.ArgumentString(), "raw=%q", tt.raw)
	}
}
