package keystudio

import (
	"bytes"
	"encoding/json"
	"fmt"

	spErrors "github.com/harunnryd/studioport/internal/errors"
)

// UnknownFunction is the name used when a legacy record carries neither an
// alias nor a name.
const UnknownFunction = "unknown_function"

type ToolKind int

const (
	// ToolLegacy is the builder's own shape: {id, name, alias, description, config: {schema}}.
	ToolLegacy ToolKind = iota
	// ToolTarget is already {type: "function", function: {...}} and passes through.
	ToolTarget
)

func (k ToolKind) String() string {
	if k == ToolTarget {
		return "target"
	}
	return "legacy"
}

// ToolRecord is one entry of the tool list, resolved to its variant.
type ToolRecord struct {
	Kind ToolKind

	// Legacy fields.
	ID          string
	Name        string
	Alias       string
	Description string
	// Schema is config.schema, else function.parameters, else nil.
	Schema any

	// Raw is the compact source of a ToolTarget record, emitted verbatim.
	Raw json.RawMessage
	// FunctionName is function.name of a ToolTarget record.
	FunctionName string
}

// CanonicalName is the single callable name used in converted output.
func (r ToolRecord) CanonicalName() string {
	if r.Kind == ToolTarget {
		return r.FunctionName
	}
	switch {
	case r.Alias != "":
		return r.Alias
	case r.Name != "":
		return r.Name
	default:
		return UnknownFunction
	}
}

// DecodeTools parses a JSON array of tool definitions.
func DecodeTools(data []byte) ([]ToolRecord, error) {
	elems, err := decodeArray("tools", data)
	if err != nil {
		return nil, err
	}

	records := make([]ToolRecord, 0, len(elems))
	for i, raw := range elems {
		rec, err := parseTool(raw)
		if err != nil {
			return nil, spErrors.InvalidInput(fmt.Sprintf("tools[%d]: %v", i, err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseTool(raw json.RawMessage) (ToolRecord, error) {
	obj := asObject(raw)

	if obj.str("type") == "function" && obj.has("function") && isKind(obj["function"], '{') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return ToolRecord{}, err
		}
		return ToolRecord{
			Kind:         ToolTarget,
			Raw:          json.RawMessage(buf.Bytes()),
			FunctionName: obj.obj("function").str("name"),
		}, nil
	}

	rec := ToolRecord{
		Kind:        ToolLegacy,
		ID:          obj.str("id"),
		Name:        obj.str("name"),
		Alias:       obj.str("alias"),
		Description: obj.str("description"),
	}

	if schema := obj.obj("config").value("schema"); schema != nil {
		rec.Schema = schema
	} else if params := obj.obj("function").value("parameters"); params != nil {
		rec.Schema = params
	}
	return rec, nil
}
