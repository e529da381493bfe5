package store

import (
	"context"
	"errors"
	"sync"

	"log-query-translator/internal/model"
)

var (
	ErrCatalogNotLoaded = errors.New("field catalog not loaded")
)

type FieldCatalogStore interface {
	Get(ctx context.Context) (*model.FieldCatalog, error)
	Replace(ctx context.Context, catalog *model.FieldCatalog) error
}

type inMemoryFieldCatalogStore struct {
	catalog *model.FieldCatalog
	mu      sync.RWMutex
}

func NewInMemoryFieldCatalogStore() FieldCatalogStore {
	return &inMemoryFieldCatalogStore{}
}

// Get returns a copy so callers cannot mutate the shared snapshot.
func (s *inMemoryFieldCatalogStore) Get(ctx context.Context) (*model.FieldCatalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}
	cp := *s.catalog
	cp.Fields = append([]model.Field(nil), s.catalog.Fields...)
	return &cp, nil
}

func (s *inMemoryFieldCatalogStore) Replace(ctx context.Context, catalog *model.FieldCatalog) error {
	if catalog == nil {
		return errors.New("nil field catalog")
	}
	cp := *catalog
	cp.Fields = append([]model.Field(nil), catalog.Fields...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = &cp
	return nil
}
