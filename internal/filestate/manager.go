package filestate

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"log-query-translator/internal/model"
)

// Manager persists the last discovered field catalog so a restart has
// fields to offer before the first refresh completes.
type Manager interface {
	LoadSnapshot() (*model.FieldCatalog, error)
	SaveSnapshot(catalog *model.FieldCatalog) error
	GetSnapshotFilePath() string
}

type fileStateManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &fileStateManager{
		filePath: filePath,
	}
}

// LoadSnapshot returns nil without error when no snapshot exists yet.
func (m *fileStateManager) LoadSnapshot() (*model.FieldCatalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", m.filePath).Msg("Field snapshot not found, starting without one.")
			return nil, nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read field snapshot")
		return nil, err
	}

	if len(data) == 0 {
		log.Warn().Str("file", m.filePath).Msg("Field snapshot is empty, starting without one.")
		return nil, nil
	}
	var catalog model.FieldCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal field snapshot")
		return nil, err
	}

	log.Debug().Str("file", m.filePath).Int("fields", len(catalog.Fields)).Msg("Loaded field snapshot")
	return &catalog, nil
}

func (m *fileStateManager) SaveSnapshot(catalog *model.FieldCatalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal field snapshot")
		return err
	}

	tempFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary field snapshot")
		return err
	}

	if err := os.Rename(tempFilePath, m.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename field snapshot")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Int("fields", len(catalog.Fields)).Msg("Saved field snapshot")
	return nil
}

func (m *fileStateManager) GetSnapshotFilePath() string {
	return m.filePath
}
