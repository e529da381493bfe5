package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"

	"log-query-translator/internal/model"
	"log-query-translator/internal/repository"
)

type elasticsearchFieldRepository struct {
	client *elasticsearch.Client
}

func NewFieldRepository(client *elasticsearch.Client) repository.FieldRepository {
	if client == nil {
		return repository.NewDisabledFieldRepository()
	}
	return &elasticsearchFieldRepository{client: client}
}

// DiscoverFields reads the mappings of every index matching indexPattern and
// flattens them into dotted field names. Transient failures are retried.
func (r *elasticsearchFieldRepository) DiscoverFields(ctx context.Context, indexPattern string) ([]model.Field, error) {
	var fields []model.Field
	operation := func() error {
		res, err := r.client.Indices.GetMapping(
			r.client.Indices.GetMapping.WithContext(ctx),
			r.client.Indices.GetMapping.WithIndex(indexPattern),
			r.client.Indices.GetMapping.WithAllowNoIndices(true),
			r.client.Indices.GetMapping.WithIgnoreUnavailable(true),
		)
		if err != nil {
			log.Warn().Err(err).Str("index_pattern", indexPattern).Msg("Attempt failed: GetMapping transport error")
			return err
		}
		defer res.Body.Close()

		if res.IsError() {
			errMsg := fmt.Errorf("get mapping for %q returned %s", indexPattern, res.Status())
			if res.StatusCode >= 500 {
				return errMsg
			}
			return backoff.Permanent(errMsg)
		}

		parsed, err := flattenMappings(res.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		fields = parsed
		return nil
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 5 * time.Second
	retry.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(retry, ctx)); err != nil {
		return nil, err
	}
	log.Debug().Str("index_pattern", indexPattern).Int("fields", len(fields)).Msg("Discovered index fields")
	return fields, nil
}

type indexMapping struct {
	Mappings struct {
		Properties map[string]json.RawMessage `json:"properties"`
	} `json:"mappings"`
}

type propertyMapping struct {
	Type       string                     `json:"type"`
	Properties map[string]json.RawMessage `json:"properties"`
	Fields     map[string]json.RawMessage `json:"fields"`
}

// flattenMappings turns a GetMapping response into sorted, de-duplicated
// fields. Object fields contribute their children; multi-fields appear as
// "parent.sub".
func flattenMappings(body io.Reader) ([]model.Field, error) {
	var indices map[string]indexMapping
	if err := json.NewDecoder(body).Decode(&indices); err != nil {
		return nil, fmt.Errorf("decode mapping response: %w", err)
	}

	// Iterate indices in name order so the first type seen is deterministic.
	names := make([]string, 0, len(indices))
	for name := range indices {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []model.Field
	for _, name := range names {
		var err error
		fields, err = flattenProperties("", indices[name].Mappings.Properties, fields)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", name, err)
		}
	}
	return model.SortFields(fields), nil
}

func flattenProperties(prefix string, props map[string]json.RawMessage, out []model.Field) ([]model.Field, error) {
	for name, raw := range props {
		var p propertyMapping
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("field %s%s: %w", prefix, name, err)
		}
		full := prefix + name
		if p.Type != "" && p.Type != "object" && p.Type != "nested" {
			out = append(out, model.Field{Name: full, Type: p.Type})
		}
		for sub, subRaw := range p.Fields {
			var sp propertyMapping
			if err := json.Unmarshal(subRaw, &sp); err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", full, sub, err)
			}
			if sp.Type != "" {
				out = append(out, model.Field{Name: full + "." + sub, Type: sp.Type})
			}
		}
		if len(p.Properties) > 0 {
			var err error
			out, err = flattenProperties(full+".", p.Properties, out)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
