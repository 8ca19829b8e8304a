package convert

import "github.com/harunnryd/studioport/internal/keystudio"

// NameMap resolves internal names and aliases to the canonical function name.
type NameMap map[string]string

// BuildNameMap scans the tool list once. Target-shaped tools map their name
// to itself; legacy tools map both their name and alias to the canonical one.
func BuildNameMap(records []keystudio.ToolRecord) NameMap {
	names := make(NameMap, len(records)*2)
	for _, rec := range records {
		canonical := rec.CanonicalName()

		if rec.Kind == keystudio.ToolTarget {
			if canonical != "" {
				names[canonical] = canonical
			}
			continue
		}

		if rec.Name != "" {
			names[rec.Name] = canonical
		}
		if rec.Alias != "" {
			names[rec.Alias] = canonical
		}
	}
	return names
}

// Resolve returns the canonical name for raw, or raw when unknown.
func (m NameMap) Resolve(raw string) string {
	if canonical, ok := m[raw]; ok {
		return canonical
	}
	return raw
}

func (m NameMap) Has(raw string) bool {
	_, ok := m[raw]
	return ok
}
