package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log-query-translator/config"
	"log-query-translator/internal/dto"
	"log-query-translator/internal/fieldctx"
	"log-query-translator/internal/model"
	"log-query-translator/internal/pipeline"
	"log-query-translator/internal/prompt"
	"log-query-translator/internal/util"
)

type stubInvoker struct {
	mu      sync.Mutex
	replies map[string]string
	prompts map[string]string
	calls   int
}

func (s *stubInvoker) Invoke(_ context.Context, stage, p string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.prompts == nil {
		s.prompts = map[string]string{}
	}
	s.prompts[stage] = p
	return s.replies[stage], nil
}

type recordingPublisher struct {
	events []model.TranslationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e model.TranslationEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type staticCatalog struct {
	catalog *model.FieldCatalog
}

func (s staticCatalog) Refresh(context.Context) (*model.FieldCatalog, error) { return s.catalog, nil }
func (s staticCatalog) Current(context.Context) (*model.FieldCatalog, error) { return s.catalog, nil }

func newService(inv *stubInvoker, autoDiscover bool, catalog FieldCatalogService) (TranslationService, *recordingPublisher) {
	cfg := &config.Config{}
	cfg.Fields.AutoDiscover = autoDiscover
	prompts := prompt.NewRegistry()
	pub := &recordingPublisher{}
	svc := NewTranslationService(cfg, pipeline.NewTranslator(inv, prompts), pipeline.NewRepairer(inv, prompts), catalog, pub)
	return svc, pub
}

func decodeRequest(t *testing.T, body string) dto.QueryRequest {
	t.Helper()
	var req dto.QueryRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func translateReplies() map[string]string {
	return map[string]string{
		"analysis":     "Errors from payment-service in the last hour.",
		"translation":  `{"query":{"bool":{"filter":[{"term":{"service":"payment-service"}}]}}}`,
		"optimization": "```json\n{\"query\":{\"bool\":{\"filter\":[{\"term\":{\"service\":\"payment-service\"}},{\"range\":{\"@timestamp\":{\"gte\":\"now-1h\"}}}]}},\"size\":10000}\n```\nExplanation: Added the time range.",
	}
}

func TestTranslateQuery(t *testing.T) {
	inv := &stubInvoker{replies: translateReplies()}
	svc, pub := newService(inv, false, nil)

	ctx := util.WithRequestID(context.Background(), "req-42")
	resp, err := svc.TranslateQuery(ctx, decodeRequest(t, `{"natural_language_query":"  errors from payment-service in the last hour "}`))
	require.NoError(t, err)

	assert.True(t, resp.Optimized)
	assert.False(t, resp.Fallback)
	assert.Equal(t, "Added the time range.", resp.Explanation)
	assert.Contains(t, resp.ElasticsearchQuery, "query")
	assert.Contains(t, inv.prompts["analysis"], fieldctx.NoFieldsSentinel)
	assert.Contains(t, inv.prompts["translation"], "logs-*")

	require.Len(t, pub.events, 1)
	assert.Equal(t, "req-42", pub.events[0].RequestID)
	assert.Equal(t, "ok", pub.events[0].Outcome)
	assert.Equal(t, "errors from payment-service in the last hour", pub.events[0].Question)
	assert.True(t, pub.events[0].Optimized)
}

func TestTranslateQuery_Failure(t *testing.T) {
	inv := &stubInvoker{replies: map[string]string{
		"analysis":     "Errors.",
		"translation":  "I cannot do that.",
		"optimization": "Neither can I.",
	}}
	svc, pub := newService(inv, false, nil)

	resp, err := svc.TranslateQuery(context.Background(), decodeRequest(t, `{"natural_language_query":"errors"}`))
	assert.Nil(t, resp)
	var pErr *pipeline.Error
	require.ErrorAs(t, err, &pErr)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "failed", pub.events[0].Outcome)
}

func TestTranslateQuery_FieldsContext(t *testing.T) {
	catalog := staticCatalog{catalog: &model.FieldCatalog{
		IndexPattern: "logs-*",
		Fields:       []model.Field{{Name: "@timestamp", Type: "date"}, {Name: "trace.id", Type: "keyword"}},
	}}

	t.Run("discovered catalog when enabled", func(t *testing.T) {
		inv := &stubInvoker{replies: translateReplies()}
		svc, _ := newService(inv, true, catalog)
		_, err := svc.TranslateQuery(context.Background(), decodeRequest(t, `{"natural_language_query":"q"}`))
		require.NoError(t, err)
		assert.Contains(t, inv.prompts["analysis"], "- trace.id: keyword")
	})

	t.Run("caller fields win", func(t *testing.T) {
		inv := &stubInvoker{replies: translateReplies()}
		svc, _ := newService(inv, true, catalog)
		_, err := svc.TranslateQuery(context.Background(), decodeRequest(t,
			`{"natural_language_query":"q","additional_context":{"indicesFields":{"host.name":"keyword"}}}`))
		require.NoError(t, err)
		assert.Contains(t, inv.prompts["analysis"], "- host.name: keyword")
		assert.NotContains(t, inv.prompts["analysis"], "trace.id")
	})

	t.Run("catalog ignored when disabled", func(t *testing.T) {
		inv := &stubInvoker{replies: translateReplies()}
		svc, _ := newService(inv, false, catalog)
		_, err := svc.TranslateQuery(context.Background(), decodeRequest(t, `{"natural_language_query":"q"}`))
		require.NoError(t, err)
		assert.Contains(t, inv.prompts["analysis"], fieldctx.NoFieldsSentinel)
	})
}

func TestFixQuery_RejectsMissingContextBeforeModelCall(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{"no context", `{"natural_language_query":"fix"}`, []string{"DslQuery", "ErrorMessage"}},
		{"no error message", `{"natural_language_query":"fix","additional_context":{"DslQuery":{"query":{}}}}`, []string{"ErrorMessage"}},
		{"blank query", `{"natural_language_query":"fix","additional_context":{"DslQuery":" ","ErrorMessage":"boom"}}`, []string{"DslQuery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &stubInvoker{}
			svc, pub := newService(inv, false, nil)

			_, err := svc.FixQuery(context.Background(), decodeRequest(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.missing, inputErr.Missing)
			assert.Zero(t, inv.calls)
			require.Len(t, pub.events, 1)
			assert.Equal(t, "rejected", pub.events[0].Outcome)
		})
	}
}

func TestFixQuery(t *testing.T) {
	inv := &stubInvoker{replies: map[string]string{
		"fix": "```json\n{\"query\":{\"term\":{\"level.keyword\":\"ERROR\"}}}\n```",
	}}
	svc, _ := newService(inv, false, nil)

	resp, err := svc.FixQuery(context.Background(), decodeRequest(t, `{
		"natural_language_query": "errors",
		"additional_context": {"DslQuery": {"query":{"term":{"level":"ERROR"}}}, "ErrorMessage": "text field"}
	}`))
	require.NoError(t, err)
	assert.False(t, resp.Fallback)
	assert.False(t, resp.Optimized)
	assert.Contains(t, inv.prompts["fix"], `{"query":{"term":{"level":"ERROR"}}}`)
	assert.Contains(t, inv.prompts["fix"], "text field")
}

func TestFixQuery_SafeDefault(t *testing.T) {
	inv := &stubInvoker{replies: map[string]string{"fix": "No idea, sorry."}}
	svc, pub := newService(inv, false, nil)

	resp, err := svc.FixQuery(context.Background(), decodeRequest(t, `{
		"natural_language_query": "errors",
		"additional_context": {"DslQuery": "{\"query\":{}}", "ErrorMessage": "parse failure"}
	}`))
	require.NoError(t, err)

	body, err := json.Marshal(resp.ElasticsearchQuery)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}},"size":1,"_source":true}`, string(body))
	assert.True(t, resp.Fallback)
	assert.Equal(t, "fallback", pub.events[0].Outcome)
}
