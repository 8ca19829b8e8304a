package convert

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/keystudio"
)

// NormalizeTools maps tool records to function declarations, one per record
// and in the same order. Records already in target shape pass through byte
// for byte.
func NormalizeTools(records []keystudio.ToolRecord) ([]Tool, error) {
	tools := make([]Tool, 0, len(records))
	for i, rec := range records {
		if rec.Kind == keystudio.ToolTarget {
			tools = append(tools, passThrough(rec))
			continue
		}

		params, err := legacyParameters(rec)
		if err != nil {
			return nil, fmt.Errorf("tools[%d] %q: %w", i, rec.CanonicalName(), err)
		}

		tools = append(tools, Tool{Tool: openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        rec.CanonicalName(),
				Description: rec.Description,
				Parameters:  params,
			},
		}})
	}
	return tools, nil
}

// passThrough keeps the record's bytes for output. The embedded definition is
// filled on a best-effort basis for tables and logs only.
func passThrough(rec keystudio.ToolRecord) Tool {
	t := Tool{Raw: rec.Raw}
	if err := json.Unmarshal(rec.Raw, &t.Tool); err != nil {
		t.Tool = openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{Name: rec.FunctionName},
		}
	}
	return t
}

func legacyParameters(rec keystudio.ToolRecord) (map[string]any, error) {
	if rec.Schema == nil {
		return emptyObjectSchema(), nil
	}

	schema, ok := rec.Schema.(map[string]any)
	if !ok {
		return nil, spErrors.Internal(fmt.Sprintf("parameters schema must be an object, got %T", rec.Schema))
	}
	return NormalizeSchema(schema).(map[string]any), nil
}
