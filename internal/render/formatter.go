package render

import (
	"fmt"
	"strings"

	"github.com/harunnryd/studioport/internal/convert"
)

type OutputFormat string

const (
	OutputFormatCurl   OutputFormat = "curl"
	OutputFormatScript OutputFormat = "script"
	OutputFormatJSON   OutputFormat = "json"
	OutputFormatYAML   OutputFormat = "yaml"
)

// Renderer turns a conversion result into text.
type Renderer interface {
	Render(*convert.Result) (string, error)
}

// Options configure the command templates.
type Options struct {
	Endpoint  string
	APIKeyEnv string
	// CurlArgs is a shell-style string of extra curl arguments.
	CurlArgs string
	Indent   string
}

type FormatterFactory struct {
	opts Options
}

func NewFormatterFactory(opts Options) *FormatterFactory {
	return &FormatterFactory{opts: opts}
}

func (f *FormatterFactory) Create(format OutputFormat) (Renderer, error) {
	switch format {
	case OutputFormatCurl:
		return NewCurlRenderer(f.opts)
	case OutputFormatScript:
		return NewScriptRenderer(f.opts)
	case OutputFormatJSON:
		return NewJSONRenderer(f.opts.Indent), nil
	case OutputFormatYAML:
		return NewYAMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: curl, script, json, yaml)", format)
	}
}

func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case OutputFormatCurl, OutputFormatScript, OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (supported: curl, script, json, yaml)", s)
	}
}
