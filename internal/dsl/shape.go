// Package dsl checks that a produced query looks like an Elasticsearch
// search request body. Violations are reported, never enforced.
package dsl

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed search_request.schema.json
var searchRequestSchema string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiled() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(searchRequestSchema))
	})
	return schema, schemaErr
}

// Check returns one message per shape violation in query. An empty result
// means the query looks like a search request body.
func Check(query map[string]any) ([]string, error) {
	s, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("dsl: load schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(query))
	if err != nil {
		return nil, fmt.Errorf("dsl: validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return violations, nil
}
