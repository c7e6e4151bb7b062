package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mierio/backend/internal/features/model/domain"
)

// ErrModelConfigNotFound is returned when a saved configuration file does not exist.
var ErrModelConfigNotFound = errors.New("model configuration file not found")

// StoredModelConfig describes one saved configuration file.
type StoredModelConfig struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	SizeText   string    `json:"size_text"`
	ModifiedAt time.Time `json:"modified_at"`
	Age        string    `json:"age"`
}

// ModelConfigStore defines the interface for model configuration persistence.
type ModelConfigStore interface {
	SaveModelConfig(model *domain.SavedModel, now time.Time) (string, error)
	LoadModelConfig(filename string) (*domain.SavedModel, error)
	ListModelConfigs() ([]StoredModelConfig, error)
}

// modelConfigStore is the implementation of ModelConfigStore on a directory
// of JSON files.
type modelConfigStore struct {
	dir string
}

// NewModelConfigStore creates a new ModelConfigStore writing into dir.
func NewModelConfigStore(dir string) ModelConfigStore {
	return &modelConfigStore{dir: dir}
}

// SaveModelConfig stamps the model with now and writes it to
// LAW_MODEL_<timestamp>.json. It returns the file name.
func (s *modelConfigStore) SaveModelConfig(model *domain.SavedModel, now time.Time) (string, error) {
	model.Timestamp = now.Format("2006-01-02T15:04:05.000000")
	filename := fmt.Sprintf("LAW_MODEL_%s.json", now.Format("20060102150405"))
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(model, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal model config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write model config to file %s: %w", path, err)
	}

	slog.Debug("model config saved", "path", path, "bytes", len(data))
	return filename, nil
}

// LoadModelConfig reads a saved configuration by file name.
func (s *modelConfigStore) LoadModelConfig(filename string) (*domain.SavedModel, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModelConfigNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model config file %s: %w", path, err)
	}

	var model domain.SavedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model config from %s: %w", path, err)
	}
	return &model, nil
}

// ListModelConfigs returns the saved configuration files, newest first.
func (s *modelConfigStore) ListModelConfigs() ([]StoredModelConfig, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list model configs in %s: %w", s.dir, err)
	}

	var configs []StoredModelConfig
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		configs = append(configs, StoredModelConfig{
			Filename:   entry.Name(),
			Size:       info.Size(),
			SizeText:   humanize.Bytes(uint64(info.Size())),
			ModifiedAt: info.ModTime(),
			Age:        humanize.Time(info.ModTime()),
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		if !configs[i].ModifiedAt.Equal(configs[j].ModifiedAt) {
			return configs[i].ModifiedAt.After(configs[j].ModifiedAt)
		}
		return configs[i].Filename > configs[j].Filename
	})
	return configs, nil
}

// path resolves a bare file name inside the store directory.
func (s *modelConfigStore) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid model config file name %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
