package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	DefaultIndexPattern = "logs-*"

	ContextIndicesFields = "indicesFields"
	ContextDslQuery      = "DslQuery"
	ContextErrorMessage  = "ErrorMessage"
)

type QueryRequest struct {
	NaturalLanguageQuery string                     `json:"natural_language_query" binding:"required" example:"Show me all errors from the payment-service in the last hour"`
	IndexPattern         string                     `json:"index_pattern,omitempty" example:"logs-*"`
	TimeRange            map[string]string          `json:"time_range,omitempty"`
	AdditionalContext    map[string]json.RawMessage `json:"additional_context,omitempty" swaggertype:"object"`
}

// Normalize trims the question and applies the default index pattern.
func (r *QueryRequest) Normalize() {
	r.NaturalLanguageQuery = strings.TrimSpace(r.NaturalLanguageQuery)
	r.IndexPattern = strings.TrimSpace(r.IndexPattern)
	if r.IndexPattern == "" {
		r.IndexPattern = DefaultIndexPattern
	}
}

// IndicesFields returns the raw indicesFields value, if one was sent.
func (r *QueryRequest) IndicesFields() (json.RawMessage, bool) {
	raw, ok := r.AdditionalContext[ContextIndicesFields]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// ContextText returns an additional_context value as text. JSON strings are
// unquoted; any other value is returned in compact JSON form. Blank or null
// values count as absent.
func (r *QueryRequest) ContextText(key string) (string, bool) {
	raw, ok := r.AdditionalContext[key]
	if !ok || isNull(raw) {
		return "", false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			text = string(raw)
		} else {
			text = buf.String()
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
