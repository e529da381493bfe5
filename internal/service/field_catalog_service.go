package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"log-query-translator/config"
	"log-query-translator/internal/filestate"
	"log-query-translator/internal/metrics"
	"log-query-translator/internal/model"
	"log-query-translator/internal/repository"
	"log-query-translator/internal/store"
)

type FieldCatalogService interface {
	// Refresh discovers fields for the configured index pattern and replaces
	// the current catalog.
	Refresh(ctx context.Context) (*model.FieldCatalog, error)
	Current(ctx context.Context) (*model.FieldCatalog, error)
}

type fieldCatalogService struct {
	indexPattern string
	repo         repository.FieldRepository
	store        store.FieldCatalogStore
	snapshots    filestate.Manager
}

// NewFieldCatalogService warm-starts the store from the last saved snapshot.
func NewFieldCatalogService(cfg *config.Config, repo repository.FieldRepository, catalogStore store.FieldCatalogStore, snapshots filestate.Manager) FieldCatalogService {
	s := &fieldCatalogService{
		indexPattern: cfg.Fields.IndexPattern,
		repo:         repo,
		store:        catalogStore,
		snapshots:    snapshots,
	}

	if snapshots != nil {
		saved, err := snapshots.LoadSnapshot()
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable field snapshot")
		} else if saved != nil {
			_ = catalogStore.Replace(context.Background(), saved)
			metrics.CatalogFields.Set(float64(len(saved.Fields)))
			log.Info().Int("fields", len(saved.Fields)).Str("index_pattern", saved.IndexPattern).Msg("Field catalog warm-started from snapshot")
		}
	}
	return s
}

func (s *fieldCatalogService) Refresh(ctx context.Context) (*model.FieldCatalog, error) {
	start := time.Now()
	fields, err := s.repo.DiscoverFields(ctx, s.indexPattern)
	if err != nil {
		return nil, fmt.Errorf("discover fields for %s: %w", s.indexPattern, err)
	}

	catalog := &model.FieldCatalog{
		IndexPattern: s.indexPattern,
		Fields:       model.SortFields(fields),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.store.Replace(ctx, catalog); err != nil {
		return nil, err
	}
	metrics.CatalogFields.Set(float64(len(catalog.Fields)))

	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(catalog); err != nil {
			log.Warn().Err(err).Msg("Failed to persist field snapshot")
		}
	}

	log.Info().
		Str("index_pattern", s.indexPattern).
		Int("fields", len(catalog.Fields)).
		Dur("took", time.Since(start)).
		Msg("Field catalog refreshed")
	return catalog, nil
}

func (s *fieldCatalogService) Current(ctx context.Context) (*model.FieldCatalog, error) {
	return s.store.Get(ctx)
}
