package memory

import (
	"context"
	"sort"
	"sync"

	"landauSwap/internal/model"
	"landauSwap/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu   sync.RWMutex
	data map[string]model.PoolAccount
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		data: make(map[string]model.PoolAccount),
	}
}

// Create adds a new pool. Returns ErrAlreadyExists if the id is taken.
func (s *PoolStore) Create(_ context.Context, account model.PoolAccount) error {
	if account.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[account.ID]; exists {
		return storage.ErrAlreadyExists
	}
	s.data[account.ID] = account
	return nil
}

// Get returns the pool by id.
func (s *PoolStore) Get(_ context.Context, id string) (model.PoolAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.data[id]
	if !ok {
		return model.PoolAccount{}, storage.ErrNotFound
	}
	return account, nil
}

// Update replaces the pool if its stored version is account.Version-1.
func (s *PoolStore) Update(_ context.Context, account model.PoolAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data[account.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if err := storage.CheckVersion(stored.Version, account.Version); err != nil {
		return err
	}
	s.data[account.ID] = account
	return nil
}

// List returns all pools ordered by id.
func (s *PoolStore) List(_ context.Context) ([]model.PoolAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.PoolAccount, 0, len(s.data))
	for _, account := range s.data {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

var _ storage.PoolStore = (*PoolStore)(nil)
