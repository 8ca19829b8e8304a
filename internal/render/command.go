package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/convert"
)

const heredocDelimiter = "STUDIOPORT_JSON"

var curlTemplate = template.Must(template.New("curl").Parse(
	`curl -sS -X POST {{.Endpoint}} \
  -H 'Content-Type: application/json' \
  -H "Authorization: Bearer ${{.APIKeyEnv}}" \
{{- range .ExtraArgs}}
  {{.}} \
{{- end}}
  -d {{.QuotedBody}}
`))

var scriptTemplate = template.Must(template.New("script").Parse(
	`#!/usr/bin/env bash
# Chat-completion request: {{.Messages}} messages, {{.Tools}} tools.
set -euo pipefail

: "${{"{"}}{{.APIKeyEnv}}:?set {{.APIKeyEnv}} before running{{"}"}}"

curl -sS -X POST {{.Endpoint}} \
  -H 'Content-Type: application/json' \
  -H "Authorization: Bearer ${{"{"}}{{.APIKeyEnv}}{{"}"}}" \
{{- range .ExtraArgs}}
  {{.}} \
{{- end}}
  --data-binary @- <<'{{.Delimiter}}'
{{.Body}}
{{.Delimiter}}
`))

type commandData struct {
	Endpoint   string
	APIKeyEnv  string
	ExtraArgs  []string
	Body       string
	QuotedBody string
	Delimiter  string
	Messages   int
	Tools      int
}

type commandRenderer struct {
	tmpl      *template.Template
	endpoint  string
	apiKeyEnv string
	extraArgs []string
	indent    string
}

func newCommandRenderer(tmpl *template.Template, opts Options) (*commandRenderer, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = config.DefaultRenderEndpoint
	}
	apiKeyEnv := strings.TrimSpace(opts.APIKeyEnv)
	if apiKeyEnv == "" {
		apiKeyEnv = config.DefaultRenderAPIKeyEnv
	}
	if err := validateEnvName(apiKeyEnv); err != nil {
		return nil, err
	}

	extra, err := splitCurlArgs(opts.CurlArgs)
	if err != nil {
		return nil, err
	}

	return &commandRenderer{
		tmpl:      tmpl,
		endpoint:  ShellQuote(endpoint),
		apiKeyEnv: apiKeyEnv,
		extraArgs: extra,
		indent:    opts.Indent,
	}, nil
}

// NewCurlRenderer renders a single curl invocation with the body inline.
func NewCurlRenderer(opts Options) (Renderer, error) {
	return newCommandRenderer(curlTemplate, opts)
}

// NewScriptRenderer renders a bash script that feeds the body through a
// quoted heredoc, so the body needs no escaping.
func NewScriptRenderer(opts Options) (Renderer, error) {
	return newCommandRenderer(scriptTemplate, opts)
}

func (r *commandRenderer) Render(res *convert.Result) (string, error) {
	body, err := Body(res.Request, r.indent)
	if err != nil {
		return "", fmt.Errorf("encode request body: %w", err)
	}

	data := commandData{
		Endpoint:   r.endpoint,
		APIKeyEnv:  r.apiKeyEnv,
		ExtraArgs:  r.extraArgs,
		Body:       body,
		QuotedBody: ShellQuote(body),
		Delimiter:  heredocDelimiter,
		Messages:   res.MessageCount,
		Tools:      res.ToolCount,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", r.tmpl.Name(), err)
	}
	return buf.String(), nil
}
