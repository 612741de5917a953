package results

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type InMemStore struct {
	lock    sync.RWMutex
	records []Record
}

func NewInMemStore() *InMemStore {
	return &InMemStore{}
}

func (s *InMemStore) SaveBulk(_ context.Context, records []Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := append([]Record(nil), records...)
	Prepare(batch, time.Now().UTC())
	s.records = append(s.records, batch...)
	slog.Debug("saved results in memory", "count", len(batch))
	return nil
}

func (s *InMemStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return filter.Apply(s.records), nil
}
