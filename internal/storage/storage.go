package storage

import (
	"context"

	"landauSwap/internal/model"
)

// PoolStore persists pool accounts. Update is optimistic: the stored version
// must be account.Version-1 or ErrVersionConflict is returned.
type PoolStore interface {
	Create(ctx context.Context, account model.PoolAccount) error
	Get(ctx context.Context, id string) (model.PoolAccount, error)
	Update(ctx context.Context, account model.PoolAccount) error
	List(ctx context.Context) ([]model.PoolAccount, error)
}

// SettlementSink records settled batches.
type SettlementSink interface {
	PutSettlements(ctx context.Context, settlements []model.Settlement) error
}

// SettlementReader lists recorded settlements of a pool, oldest first.
type SettlementReader interface {
	ListSettlements(ctx context.Context, poolID string) ([]model.Settlement, error)
}

// SettlementLog is a settlement sink that can be read back.
type SettlementLog interface {
	SettlementSink
	SettlementReader
}
