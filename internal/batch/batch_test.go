package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/output"
	"github.com/harunnryd/studioport/internal/render"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseManifest_ResolvesRelativePaths(t *testing.T) {
	base := t.TempDir()
	m, err := ParseManifest([]byte(`
generation:
  temperature: 0.5
jobs:
  - name: alpha
    tools: inputs/tools.json
    transcript: /abs/transcript.json
    generation:
      tool_choice: required
`), base)
	require.NoError(t, err)
	require.Len(t, m.Jobs, 1)

	job := m.Jobs[0]
	assert.Equal(t, filepath.Join(base, "inputs", "tools.json"), job.Tools)
	assert.Equal(t, "/abs/transcript.json", job.Transcript)

	params := job.Generation.Apply(m.Generation.Apply(convert.DefaultParams()))
	assert.Equal(t, 0.5, params.Temperature)
	assert.Equal(t, convert.DefaultTopP, params.TopP)
	assert.Equal(t, "required", params.ToolChoice)
}

func TestParseManifest_Rejects(t *testing.T) {
	tests := map[string]string{
		"no jobs":        "jobs: []",
		"unknown field":  "jobs:\n  - name: a\n    tools: t\n    transcript: s\n    model: gpt",
		"stdin input":    "jobs:\n  - name: a\n    tools: '-'\n    transcript: s",
		"missing input":  "jobs:\n  - name: a\n    tools: t",
		"bad name":       "jobs:\n  - name: '..'\n    tools: t\n    transcript: s",
		"colliding name": "jobs:\n  - {name: a b, tools: t, transcript: s}\n  - {name: a_b, tools: t, transcript: s}",
		"not yaml":       "jobs: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc), t.TempDir())
			require.Error(t, err)
			assert.True(t, errors.Is(err, spErrors.ErrInvalidInput), err.Error())
		})
	}
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tools.json", `[{"name":"search","alias":"web_search"}]`)
	writeFile(t, dir, "good.json", `[{"role":"user","content":"hi"},{"role":"assistant","tool_calls":[{"name":"search","args":{"q":"go"}}]}]`)
	writeFile(t, dir, "blank.json", `[{"role":"user","content":"   "}]`)
	writeFile(t, dir, "broken.json", `{"role":"user"}`)

	manifest := writeFile(t, dir, "batch.yaml", `
jobs:
  - {name: good, tools: tools.json, transcript: good.json}
  - {name: blank, tools: tools.json, transcript: blank.json}
  - {name: broken, tools: tools.json, transcript: broken.json}
  - {name: missing, tools: tools.json, transcript: nope.json}
`)
	m, err := LoadManifest(manifest)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	w, err := output.Open(context.Background(), outDir, time.Second)
	require.NoError(t, err)
	defer w.Close()

	runner := NewRunner(convert.DefaultParams(), render.NewFormatterFactory(render.Options{}), w, 2,
		convert.WithIDGenerator(convert.SequenceGenerator{}))
	outcomes, err := runner.Run(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	assert.Equal(t, render.JobStatusOK, outcomes[0].Status())
	assert.Equal(t, 2, outcomes[0].Result.MessageCount)
	assert.Len(t, outcomes[0].Paths, 3)
	assert.FileExists(t, filepath.Join(outDir, "good", output.ScriptFile))

	assert.Equal(t, render.JobStatusEmpty, outcomes[1].Status())
	assert.NoDirExists(t, filepath.Join(outDir, "blank"))

	assert.Equal(t, render.JobStatusFail, outcomes[2].Status())
	assert.True(t, errors.Is(outcomes[2].Err, spErrors.ErrInvalidInput))

	assert.Equal(t, render.JobStatusFail, outcomes[3].Status())
	assert.True(t, errors.Is(outcomes[3].Err, os.ErrNotExist))

	assert.Equal(t, 2, Failed(outcomes))

	rows := Rows(outcomes)
	require.Len(t, rows, 4)
	assert.Equal(t, "good", rows[0].Name)
	assert.Equal(t, 1, rows[0].Tools)
	assert.NotEmpty(t, rows[2].Detail)
}

func TestRunner_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tools.json", `[{"name":"search"}]`)
	writeFile(t, dir, "t.json", `[{"role":"user","content":"hi"}]`)

	m, err := ParseManifest([]byte("jobs:\n  - {name: a, tools: tools.json, transcript: t.json}"), dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(convert.DefaultParams(), render.NewFormatterFactory(render.Options{}), nil, 0)
	_, err = runner.Run(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}
