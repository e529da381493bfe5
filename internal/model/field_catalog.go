package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldCatalog is a point-in-time view of the fields discovered for an
// index pattern.
type FieldCatalog struct {
	IndexPattern string    `json:"index_pattern"`
	Fields       []Field   `json:"fields"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SortFields orders fields by name and drops duplicate names, keeping the
// first type seen.
func SortFields(fields []Field) []Field {
	seen := make(map[string]struct{}, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name]; ok || f.Name == "" {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Mapping renders the catalog as a field-to-type JSON object in field
// order, the same shape callers send as indicesFields.
func (c *FieldCatalog) Mapping() json.RawMessage {
	if c == nil || len(c.Fields) == 0 {
		return json.RawMessage(`{}`)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(f.Name)
		typ, _ := json.Marshal(f.Type)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(typ)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
