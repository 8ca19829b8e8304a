package keystudio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NormalizeContent flattens a message content field to plain text.
//
// Strings are returned as-is. Arrays contribute the text of every
// {"type":"text"} block with non-empty text, newline-joined in order. Other
// objects become their compact JSON form. Absent or null content is empty.
// Numbers print in plain decimal form (1e2 is "100", 1.0 is "1") and booleans
// as true or false.
func NormalizeContent(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case '[':
		return joinTextBlocks(trimmed)
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return string(trimmed)
		}
		return buf.String()
	case 't', 'f':
		return string(trimmed)
	default:
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return string(trimmed)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func joinTextBlocks(raw []byte) string {
	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		obj := asObject(block)
		if obj.str("type") != "text" {
			continue
		}
		if text := obj.str("text"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
