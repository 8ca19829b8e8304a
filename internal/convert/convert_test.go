package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spErrors "github.com/harunnryd/studioport/internal/errors"
)

const scenarioBTranscript = `[
	{"role":"assistant","tool_calls":[{"name":"search","args":{"q":"x"}}]},
	{"role":"tool_node","additional_kwargs":{"node_metadata":{"nodeType":"tool"}},"content":"result"}
]`

func TestConvertJSON_AssemblesRequest(t *testing.T) {
	params := Params{Temperature: 0.7, TopP: 0.9, ToolChoice: "required"}

	res, err := ConvertJSON([]byte(scenarioATools), []byte(scenarioBTranscript), params, WithIDGenerator(SequenceGenerator{}))
	require.NoError(t, err)

	assert.Equal(t, 2, res.MessageCount)
	assert.Equal(t, 1, res.ToolCount)
	assert.Equal(t, 0.7, res.Request.Temperature)
	assert.Equal(t, 0.9, res.Request.TopP)
	assert.Equal(t, "required", res.Request.ToolChoice)

	body, err := json.Marshal(res.Request)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(body, &generic))
	assert.ElementsMatch(t, []string{"temperature", "top_p", "tool_choice", "messages", "tools"}, keys(generic))

	messages := generic["messages"].([]any)
	require.Len(t, messages, 2)
	assistant := messages[0].(map[string]any)
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	call := calls[0].(map[string]any)
	assert.Equal(t, "call_0_0", call["id"])
	assert.Equal(t, "function", call["type"])
	assert.Equal(t, map[string]any{"name": "web_search", "arguments": `{"q":"x"}`}, call["function"])

	response := messages[1].(map[string]any)
	assert.Equal(t, "tool", response["role"])
	assert.Equal(t, "call_0_0", response["tool_call_id"])
	assert.Equal(t, "result", response["content"])

	tools := generic["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "web_search", fn["name"])
	assert.Equal(t, map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": true,
	}, fn["parameters"])
}

func TestConvertJSON_EmptyContentIsSerialized(t *testing.T) {
	transcript := `[
		{"role":"assistant","tool_calls":[{"id":"c1","name":"search"}]},
		{"role":"tool_node","additional_kwargs":{"node_metadata":{"nodeType":"tool"}},"content":""}
	]`

	res, err := ConvertJSON([]byte(scenarioATools), []byte(transcript), DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 2, res.MessageCount)

	body, err := json.Marshal(res.Request)
	require.NoError(t, err)

	var wire struct {
		Messages []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &wire))
	require.Len(t, wire.Messages, 2)

	assert.True(t, strings.HasPrefix(string(wire.Messages[0]), `{"role":"assistant","content":"","tool_calls":[`), string(wire.Messages[0]))
	assert.Equal(t, `{"role":"tool","content":"","tool_call_id":"c1"}`, string(wire.Messages[1]))
}

func TestRequest_MarshalKeepsHTMLCharacters(t *testing.T) {
	res, err := ConvertJSON([]byte(`[{"name":"cmp","description":"a < b && c > d"}]`),
		[]byte(`[{"role":"user","content":"<b>hi</b>"}]`), DefaultParams())
	require.NoError(t, err)

	body, err := json.Marshal(res.Request)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"description":"a < b && c > d"`)
	assert.Contains(t, string(body), `{"role":"user","content":"<b>hi</b>"}`)
}

func TestConvert_DefaultParamsPassThrough(t *testing.T) {
	res, err := ConvertJSON([]byte(scenarioATools), []byte(`[{"role":"user","content":"hi"}]`), DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, DefaultTemperature, res.Request.Temperature)
	assert.Equal(t, DefaultTopP, res.Request.TopP)
	assert.Equal(t, DefaultToolChoice, res.Request.ToolChoice)
}

func TestConvert_EmptyResult(t *testing.T) {
	res, err := ConvertJSON([]byte(scenarioATools), []byte(`[{"role":"user","content":" "},{"role":"x"}]`), DefaultParams())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, spErrors.ErrEmptyResult))
	assert.False(t, errors.Is(err, spErrors.ErrInternal))
}

func TestConvert_InvalidInputIsRejectedBeforeConversion(t *testing.T) {
	_, err := ConvertJSON([]byte(`{}`), []byte(scenarioBTranscript), DefaultParams())
	assert.True(t, errors.Is(err, spErrors.ErrInvalidInput))

	_, err = ConvertJSON([]byte(scenarioATools), []byte(`[]`), DefaultParams())
	assert.True(t, errors.Is(err, spErrors.ErrInvalidInput))
}

func TestConvert_SchemaFaultIsInternal(t *testing.T) {
	_, err := ConvertJSON([]byte(`[{"name":"x","config":{"schema":[1,2]}}]`), []byte(scenarioBTranscript), DefaultParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, spErrors.ErrInternal))
}

func TestConvert_ConcurrentCallsDoNotShareState(t *testing.T) {
	const workers = 16

	var wg sync.WaitGroup
	results := make([]*Result, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			transcript := fmt.Sprintf(`[
				{"role":"assistant","tool_calls":[{"id":"w%d","name":"search"}]},
				{"role":"node","content":"r%d"}
			]`, i, i)
			results[i], errs[i] = ConvertJSON([]byte(scenarioATools), []byte(transcript), DefaultParams())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		msgs := results[i].Request.Messages
		require.Len(t, msgs, 2)
		assert.Equal(t, fmt.Sprintf("w%d", i), msgs[1].ToolCallID)
		assert.Equal(t, fmt.Sprintf("r%d", i), msgs[1].Content)
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
