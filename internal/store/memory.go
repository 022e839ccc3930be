package store

import (
	"context"
	"fmt"
	"sync"

	models "github.com/CodeAndHammer/mysterybox/internal/models"
)

// MemoryStore keeps the encoded document in memory, so every Load returns an
// independent copy.
type MemoryStore struct {
	lock sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*models.GameState, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.data == nil {
		return NewEmptyState(), nil
	}
	return decodeState(s.data)
}

func (s *MemoryStore) Save(_ context.Context, state *models.GameState) error {
	data, err := encodeState(state)
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.data = data
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
