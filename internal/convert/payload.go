package convert

import "github.com/sashabaranov/go-openai"

const (
	DefaultTemperature = 0.1
	DefaultTopP        = 0.1
	DefaultToolChoice  = "auto"
)

// Params are the user-supplied generation settings. They are copied into the
// request as-is.
type Params struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
	ToolChoice  string  `json:"tool_choice" yaml:"tool_choice"`
}

func DefaultParams() Params {
	return Params{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		ToolChoice:  DefaultToolChoice,
	}
}

// Request is the chat-completion request body. Its JSON form is written by
// MarshalJSON in wire.go.
type Request struct {
	Temperature float64                        `json:"temperature"`
	TopP        float64                        `json:"top_p"`
	ToolChoice  string                         `json:"tool_choice"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Tools       []Tool                         `json:"tools"`
}

func Assemble(params Params, tools []Tool, messages []openai.ChatCompletionMessage) Request {
	return Request{
		Temperature: params.Temperature,
		TopP:        params.TopP,
		ToolChoice:  params.ToolChoice,
		Messages:    messages,
		Tools:       tools,
	}
}
