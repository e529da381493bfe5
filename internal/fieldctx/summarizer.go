// Package fieldctx turns caller-supplied index field metadata into the text
// block injected into every prompt.
package fieldctx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NoFieldsSentinel is rendered when the caller gave no usable field metadata,
// so prompts never carry an empty field section.
const NoFieldsSentinel = "No information about available index fields was provided."

const unknownType = "unknown"

var errNotObject = errors.New("value is not a JSON object")

type entry struct {
	key   string
	value json.RawMessage
}

// Summarize renders field metadata of unknown shape:
//
//	mapping -> one "- name: type" line per key, in document order
//	list    -> comma-joined element text
//	other   -> text form of the value
//
// The result is never empty.
func Summarize(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return NoFieldsSentinel
	}

	var out string
	switch trimmed[0] {
	case '{':
		if entries, err := orderedEntries(trimmed); err == nil {
			out = renderMapping(entries)
		} else {
			out = textOf(trimmed)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			out = renderList(items)
		} else {
			out = textOf(trimmed)
		}
	default:
		out = textOf(trimmed)
	}

	if strings.TrimSpace(out) == "" {
		return NoFieldsSentinel
	}
	return out
}

func renderMapping(entries []entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s: %s", e.key, typeOf(e.value)))
	}
	return strings.Join(lines, "\n")
}

func renderList(items []json.RawMessage) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, textOf(item))
	}
	return strings.Join(names, ", ")
}

// typeOf reads the nested "type" attribute of a mapping value, or falls back
// to the value's own text.
func typeOf(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return textOf(trimmed)
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &attrs); err != nil {
		return textOf(trimmed)
	}
	if t, ok := attrs["type"]; ok {
		return textOf(t)
	}
	return unknownType
}

// textOf unquotes JSON strings and compacts everything else.
func textOf(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err == nil {
		return buf.String()
	}
	return string(trimmed)
}

// orderedEntries walks a JSON object with the token decoder so key order
// survives, which a Go map would lose.
func orderedEntries(raw []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, entry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return out, nil
}
