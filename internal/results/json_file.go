package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const JSONFileName = "results.json"

// JSONFileStore keeps all records of a directory in a single JSON array.
type JSONFileStore struct {
	lock     sync.Mutex
	filePath string
}

func NewJSONFileStore(filePath string) *JSONFileStore {
	return &JSONFileStore{filePath: filePath}
}

func (s *JSONFileStore) Path() string { return s.filePath }

func (s *JSONFileStore) SaveBulk(_ context.Context, records []Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}

	batch := append([]Record(nil), records...)
	Prepare(batch, time.Now().UTC())
	all := append(existing, batch...)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace results file: %w", err)
	}

	slog.Info("Saved results to JSON file", "path", s.filePath, "count", len(batch))
	return nil
}

func (s *JSONFileStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.lock.Lock()
	all, err := s.load()
	s.lock.Unlock()
	if err != nil {
		return nil, err
	}

	return filter.Apply(all), nil
}

func (s *JSONFileStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.filePath, err)
	}
	return records, nil
}
