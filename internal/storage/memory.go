package storage

import (
	"context"
	"sync"

	"github.com/xaenox/chronex/internal/models"
)

type MemoryStorage struct {
	mu     sync.RWMutex
	record *models.LibraryRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) LoadLibrary(ctx context.Context) (*models.LibraryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.record == nil {
		return nil, ErrNotFound
	}
	return s.record.Clone()
}

func (s *MemoryStorage) SaveLibrary(ctx context.Context, record *models.LibraryRecord) error {
	clone, err := record.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = clone
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
