package repository

import (
	"context"
	"errors"

	"log-query-translator/internal/model"
)

var ErrDiscoveryDisabled = errors.New("field discovery is not configured")

// FieldRepository discovers the searchable fields of an index pattern.
type FieldRepository interface {
	DiscoverFields(ctx context.Context, indexPattern string) ([]model.Field, error)
}

type disabledFieldRepository struct{}

// NewDisabledFieldRepository is used when no search cluster is configured.
func NewDisabledFieldRepository() FieldRepository {
	return disabledFieldRepository{}
}

func (disabledFieldRepository) DiscoverFields(context.Context, string) ([]model.Field, error) {
	return nil, ErrDiscoveryDisabled
}
