package convert

// NormalizeSchema sanitizes a JSON-schema node for the chat-completion API.
//
// Object nodes always get a properties map, and an object that declares no
// properties but sets additionalProperties to false is relaxed to true so the
// schema still admits some payload. Property values and array items are
// normalized recursively. The input is never mutated; changed nodes are
// copied.
func NormalizeSchema(node any) any {
	schema, ok := node.(map[string]any)
	if !ok || schema == nil {
		return node
	}

	switch schema["type"] {
	case "object":
		return normalizeObject(schema)
	case "array":
		items, ok := schema["items"].(map[string]any)
		if !ok {
			return schema
		}
		out := cloneNode(schema)
		out["items"] = NormalizeSchema(items)
		return out
	default:
		return schema
	}
}

func normalizeObject(schema map[string]any) map[string]any {
	out := cloneNode(schema)

	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		if extra, ok := schema["additionalProperties"].(bool); ok && !extra {
			out["additionalProperties"] = true
		}
	}

	normalized := make(map[string]any, len(props))
	for name, prop := range props {
		normalized[name] = NormalizeSchema(prop)
	}
	out["properties"] = normalized
	return out
}

// cloneNode is a shallow copy; nested nodes are replaced, not edited.
func cloneNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node)+1)
	for k, v := range node {
		out[k] = v
	}
	return out
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []any{},
	}
}
