// Package extractor locates and parses the JSON object a model embedded in
// free-form text. It never returns an error: absence is reported with ok=false
// and the caller owns the fallback.
package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	fencedJSON  = regexp.MustCompile("(?is)```json[ \t]*\\r?\\n?(.*?)```")
	braceObject = regexp.MustCompile(`(?s)\{.*\}`)
	explanation = regexp.MustCompile(`(?s)Explanation:\s*(.*?)(?:\n\s*\n|$)`)

	errNotObject = errors.New("candidate is not a JSON object")
)

// Extract runs candidate discovery and parsing on raw model text.
func Extract(text string) (map[string]any, bool) {
	candidate, ok := Candidate(text)
	if !ok {
		return nil, false
	}
	return Parse(candidate)
}

// Candidate picks the text to parse, in priority order: the interior of the
// first ```json fenced block, else the widest {...} span. ok is false when
// neither pattern matches.
func Candidate(text string) (string, bool) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := braceObject.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// Parse decodes candidate strictly, then retries after light repair: literal
// "\n" sequences removed, then single quotes turned into double quotes.
// Repairs only run when the previous attempt failed, so valid JSON is never
// altered.
func Parse(candidate string) (map[string]any, bool) {
	if obj, err := decodeObject(candidate); err == nil {
		return obj, true
	}

	stripped := strings.ReplaceAll(candidate, `\n`, "")
	if obj, err := decodeObject(stripped); err == nil {
		return obj, true
	}

	requoted := strings.ReplaceAll(stripped, "'", `"`)
	if obj, err := decodeObject(requoted); err == nil {
		return obj, true
	}
	return nil, false
}

// Explanation returns the text following an "Explanation:" marker, up to the
// next blank line.
func Explanation(text string) (string, bool) {
	m := explanation.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	out := strings.TrimSpace(m[1])
	return out, out != ""
}

func decodeObject(candidate string) (map[string]any, error) {
	trimmed := strings.TrimSpace(candidate)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errNotObject
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}
