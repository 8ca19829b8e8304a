// Package convert turns KeyStudio tool lists and transcripts into a
// chat-completion request.
package convert

import (
	"fmt"
	"log/slog"

	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/keystudio"
)

// Result is a converted request plus the counts shown in status output.
type Result struct {
	Request      Request `json:"request"`
	MessageCount int     `json:"message_count"`
	ToolCount    int     `json:"tool_count"`
}

type Option func(*options)

type options struct {
	ids IDGenerator
}

// WithIDGenerator overrides how missing tool-call ids are synthesized.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// Convert runs both pipelines and assembles the request. It returns an error
// wrapping ErrEmptyResult when no message survives reconstruction, and one
// wrapping ErrInternal when a tool schema cannot be normalized. Every call
// builds its own name map and pending queue.
func Convert(tools []keystudio.ToolRecord, transcript []keystudio.Message, params Params, opts ...Option) (*Result, error) {
	o := options{ids: ULIDGenerator()}
	for _, opt := range opts {
		opt(&o)
	}

	normalized, err := NormalizeTools(tools)
	if err != nil {
		return nil, fmt.Errorf("normalize tools: %w", err)
	}

	names := BuildNameMap(tools)
	messages := NewReconstructor(names, o.ids).Reconstruct(transcript)
	if len(messages) == 0 {
		return nil, spErrors.EmptyResult(fmt.Sprintf("no messages left after converting %d transcript entries", len(transcript)))
	}

	slog.Debug("Converted transcript", "messages", len(messages), "tools", len(normalized), "names", len(names))

	return &Result{
		Request:      Assemble(params, normalized, messages),
		MessageCount: len(messages),
		ToolCount:    len(normalized),
	}, nil
}

// ConvertJSON decodes both raw JSON arrays and converts them.
func ConvertJSON(toolsJSON, transcriptJSON []byte, params Params, opts ...Option) (*Result, error) {
	tools, err := keystudio.DecodeTools(toolsJSON)
	if err != nil {
		return nil, err
	}
	transcript, err := keystudio.DecodeTranscript(transcriptJSON)
	if err != nil {
		return nil, err
	}
	return Convert(tools, transcript, params, opts...)
}
