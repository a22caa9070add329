package memory

import (
	"context"
	"sync"

	"landauSwap/internal/model"
	"landauSwap/internal/storage"
)

// SettlementStore keeps settlements in memory, in arrival order.
type SettlementStore struct {
	mu   sync.RWMutex
	data []model.Settlement
}

// NewSettlementStore creates a new in-memory settlement store.
func NewSettlementStore() *SettlementStore {
	return &SettlementStore{}
}

// PutSettlements appends settlements. Duplicate ids fail the whole batch.
func (s *SettlementStore) PutSettlements(_ context.Context, settlements []model.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.data)+len(settlements))
	for _, existing := range s.data {
		seen[existing.ID] = struct{}{}
	}
	for _, settlement := range settlements {
		if settlement.ID == "" || settlement.PoolID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[settlement.ID]; exists {
			return storage.ErrAlreadyExists
		}
		seen[settlement.ID] = struct{}{}
	}
	s.data = append(s.data, settlements...)
	return nil
}

// ListSettlements returns the settlements of poolID.
func (s *SettlementStore) ListSettlements(_ context.Context, poolID string) ([]model.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Settlement
	for _, settlement := range s.data {
		if settlement.PoolID == poolID {
			result = append(result, settlement)
		}
	}
	return result, nil
}

var (
	_ storage.SettlementSink   = (*SettlementStore)(nil)
	_ storage.SettlementReader = (*SettlementStore)(nil)
)
