package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harunnryd/studioport/internal/convert"
)

// Body pretty-prints the request document embedded in both command
// templates. HTML characters are left unescaped so the body reads naturally.
func Body(req convert.Request, indent string) (string, error) {
	if indent == "" {
		indent = "  "
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(req); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

type JSONRenderer struct {
	indent string
}

func NewJSONRenderer(indent string) *JSONRenderer {
	return &JSONRenderer{indent: indent}
}

func (r *JSONRenderer) Render(res *convert.Result) (string, error) {
	return Body(res.Request, r.indent)
}

type YAMLRenderer struct{}

func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

// Render goes through JSON first so the YAML keys match the wire names.
func (r *YAMLRenderer) Render(res *convert.Result) (string, error) {
	data, err := json.Marshal(res.Request)
	if err != nil {
		return "", err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
