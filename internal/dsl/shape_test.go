package dsl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		query string
		valid bool
	}{
		{"safe default", `{"query":{"match_all":{}},"size":1,"_source":true}`, true},
		{"aggregation", `{"size":0,"aggs":{"by_level":{"terms":{"field":"level"}}}}`, true},
		{"bool filter", `{"query":{"bool":{"filter":[{"term":{"level":"ERROR"}}]}},"sort":[{"@timestamp":"desc"}]}`, true},
		{"empty object", `{}`, false},
		{"negative size", `{"query":{"match_all":{}},"size":-1}`, false},
		{"unknown top-level key", `{"term":{"level":"ERROR"}}`, false},
		{"empty query clause", `{"query":{}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := Check(decode(t, tt.query))
			require.NoError(t, err)
			if tt.valid {
				assert.Empty(t, violations)
			} else {
				assert.NotEmpty(t, violations)
			}
		})
	}
}

func TestCheck_AcceptsJSONNumberSize(t *testing.T) {
	query := map[string]any{"query": map[string]any{"match_all": map[string]any{}}, "size": json.Number("10000")}
	violations, err := Check(query)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
