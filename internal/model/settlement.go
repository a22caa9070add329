package model

import "time"

// Settlement is the audit record of one settled batch.
type Settlement struct {
	ID         string    `json:"id"`
	PoolID     string    `json:"pool_id"`
	BatchID    uint64    `json:"batch_id"`
	Direction  string    `json:"direction"`
	AmountIn   uint64    `json:"amount_in"`
	AmountOut  uint64    `json:"amount_out"`
	Fee        uint64    `json:"fee"`
	FeeRate    string    `json:"fee_rate"`
	OrderCount uint32    `json:"order_count"`
	ReserveA   uint64    `json:"reserve_a"`
	ReserveB   uint64    `json:"reserve_b"`
	Slot       uint64    `json:"slot"`
	SettledAt  time.Time `json:"settled_at"`
}
