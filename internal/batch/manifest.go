package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/output"
	"github.com/harunnryd/studioport/internal/pathutil"
)

// Overrides replace generation settings for a whole manifest or a single job.
// Unset fields keep the inherited value.
type Overrides struct {
	Temperature *float64 `yaml:"temperature"`
	TopP        *float64 `yaml:"top_p"`
	ToolChoice  *string  `yaml:"tool_choice"`
}

func (o Overrides) Apply(p convert.Params) convert.Params {
	if o.Temperature != nil {
		p.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		p.TopP = *o.TopP
	}
	if o.ToolChoice != nil {
		p.ToolChoice = *o.ToolChoice
	}
	return p
}

type Job struct {
	Name       string    `yaml:"name"`
	Tools      string    `yaml:"tools"`
	Transcript string    `yaml:"transcript"`
	Generation Overrides `yaml:"generation"`
}

// Manifest lists conversion jobs. Relative input paths resolve against the
// manifest's own directory.
type Manifest struct {
	Generation Overrides `yaml:"generation"`
	Jobs       []Job     `yaml:"jobs"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := ParseManifest(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

func ParseManifest(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, spErrors.InvalidInput(fmt.Sprintf("invalid YAML (%v)", err))
	}

	if len(m.Jobs) == 0 {
		return nil, spErrors.InvalidInput("no jobs defined")
	}

	seen := make(map[string]int, len(m.Jobs))
	for i := range m.Jobs {
		job := &m.Jobs[i]
		job.Name = strings.TrimSpace(job.Name)

		dirName, err := output.SafeName(job.Name)
		if err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if prev, dup := seen[dirName]; dup {
			return nil, spErrors.InvalidInput(fmt.Sprintf("jobs[%d] %q collides with jobs[%d]", i, job.Name, prev))
		}
		seen[dirName] = i

		for _, field := range []struct {
			label string
			value *string
		}{
			{"tools", &job.Tools},
			{"transcript", &job.Transcript},
		} {
			raw := strings.TrimSpace(*field.value)
			if raw == "" || raw == "-" {
				return nil, spErrors.InvalidInput(fmt.Sprintf("jobs[%d] %q: %s must be a file path", i, job.Name, field.label))
			}
			resolved, err := pathutil.ResolveFrom(baseDir, raw)
			if err != nil {
				return nil, fmt.Errorf("jobs[%d] %q: %w", i, job.Name, err)
			}
			*field.value = resolved
		}
	}

	return &m, nil
}
