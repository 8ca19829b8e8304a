package keystudio

import (
	"bytes"
	"encoding/json"
	"fmt"

	spErrors "github.com/harunnryd/studioport/internal/errors"
)

// object is a loosely-typed JSON object. Field lookups never fail; a field of
// the wrong JSON type reads as absent.
type object map[string]json.RawMessage

// decodeArray splits a JSON array into its raw elements. The input must be a
// non-empty array.
func decodeArray(label string, data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, spErrors.InvalidInput(label + " is empty")
	}
	if trimmed[0] != '[' {
		return nil, spErrors.InvalidInput(label + " must be a JSON array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, spErrors.InvalidInput(fmt.Sprintf("%s is not valid JSON (%v)", label, err))
	}
	if len(elems) == 0 {
		return nil, spErrors.InvalidInput(label + " array is empty")
	}
	return elems, nil
}

// asObject decodes raw as an object. Anything else yields an empty object.
func asObject(raw json.RawMessage) object {
	if !isKind(raw, '{') {
		return object{}
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return object{}
	}
	return obj
}

func (o object) has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

func (o object) str(key string) string {
	raw, ok := o[key]
	if !ok || !isKind(raw, '"') {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (o object) obj(key string) object {
	return asObject(o[key])
}

func (o object) array(key string) []json.RawMessage {
	raw, ok := o[key]
	if !ok || !isKind(raw, '[') {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	return elems
}

// value decodes a field into a generic Go value, or nil when absent.
func (o object) value(key string) any {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isKind(raw json.RawMessage, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}
