package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"landauSwap/internal/amm"
	"landauSwap/internal/wide"
)

// PoolAccount is a persisted pool: its identity, owner and settlement state.
// Version is bumped on every committed mutation.
type PoolAccount struct {
	ID          string
	TokenA      common.Address
	TokenB      common.Address
	Authority   common.Address
	CreatedSlot uint64
	Version     uint64
	State       amm.Pool
}

// PoolRecord is the storage form of a PoolAccount. The signed batch deltas
// are kept as base-10 strings.
type PoolRecord struct {
	ID              string `json:"id"`
	TokenA          string `json:"token_a"`
	TokenB          string `json:"token_b"`
	Authority       string `json:"authority"`
	CurveType       string `json:"curve_type"`
	CreatedSlot     uint64 `json:"created_slot"`
	Version         uint64 `json:"version"`
	ReserveA        uint64 `json:"reserve_a"`
	ReserveB        uint64 `json:"reserve_b"`
	AccumulatedFeeA uint64 `json:"accumulated_fee_a"`
	AccumulatedFeeB uint64 `json:"accumulated_fee_b"`
	BatchID         uint64 `json:"batch_id"`
	NetDeltaA       string `json:"net_delta_a"`
	NetDeltaB       string `json:"net_delta_b"`
	OrderCount      uint32 `json:"order_count"`
	LastUpdatedSlot uint64 `json:"last_updated_slot"`
}

// Record converts the account to its storage form.
func (a PoolAccount) Record() PoolRecord {
	return PoolRecord{
		ID:              a.ID,
		TokenA:          a.TokenA.Hex(),
		TokenB:          a.TokenB.Hex(),
		Authority:       a.Authority.Hex(),
		CurveType:       a.State.CurveType.String(),
		CreatedSlot:     a.CreatedSlot,
		Version:         a.Version,
		ReserveA:        a.State.ReserveA,
		ReserveB:        a.State.ReserveB,
		AccumulatedFeeA: a.State.AccumulatedFeeA,
		AccumulatedFeeB: a.State.AccumulatedFeeB,
		BatchID:         a.State.Batch.BatchID,
		NetDeltaA:       wide.FormatInt128(&a.State.Batch.NetDeltaA),
		NetDeltaB:       wide.FormatInt128(&a.State.Batch.NetDeltaB),
		OrderCount:      a.State.Batch.OrderCount,
		LastUpdatedSlot: a.State.Batch.LastUpdatedSlot,
	}
}

// Account decodes the record and checks the stored pool invariants.
func (r PoolRecord) Account() (PoolAccount, error) {
	if r.ID == "" {
		return PoolAccount{}, fmt.Errorf("pool record missing id")
	}
	tokenA, err := parseAddress("token_a", r.TokenA)
	if err != nil {
		return PoolAccount{}, err
	}
	tokenB, err := parseAddress("token_b", r.TokenB)
	if err != nil {
		return PoolAccount{}, err
	}
	authority, err := parseAddress("authority", r.Authority)
	if err != nil {
		return PoolAccount{}, err
	}
	curve, err := amm.ParseCurveType(r.CurveType)
	if err != nil {
		return PoolAccount{}, fmt.Errorf("decode pool %s: %w", r.ID, err)
	}
	deltaA, err := wide.ParseInt128(r.NetDeltaA)
	if err != nil {
		return PoolAccount{}, fmt.Errorf("decode pool %s net_delta_a: %w", r.ID, err)
	}
	deltaB, err := wide.ParseInt128(r.NetDeltaB)
	if err != nil {
		return PoolAccount{}, fmt.Errorf("decode pool %s net_delta_b: %w", r.ID, err)
	}

	account := PoolAccount{
		ID:          r.ID,
		TokenA:      tokenA,
		TokenB:      tokenB,
		Authority:   authority,
		CreatedSlot: r.CreatedSlot,
		Version:     r.Version,
		State: amm.Pool{
			ReserveA:        r.ReserveA,
			ReserveB:        r.ReserveB,
			AccumulatedFeeA: r.AccumulatedFeeA,
			AccumulatedFeeB: r.AccumulatedFeeB,
			CurveType:       curve,
			Batch: amm.BatchTotals{
				BatchID:         r.BatchID,
				OrderCount:      r.OrderCount,
				LastUpdatedSlot: r.LastUpdatedSlot,
			},
		},
	}
	account.State.Batch.NetDeltaA.Set(deltaA)
	account.State.Batch.NetDeltaB.Set(deltaB)

	if err := account.State.Validate(); err != nil {
		return PoolAccount{}, fmt.Errorf("decode pool %s: %w", r.ID, err)
	}
	return account, nil
}

// MarshalJSON encodes the account in its storage form.
func (a PoolAccount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Record())
}

// UnmarshalJSON decodes and validates a stored account.
func (a *PoolAccount) UnmarshalJSON(data []byte) error {
	var rec PoolRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	account, err := rec.Account()
	if err != nil {
		return err
	}
	*a = account
	return nil
}

func parseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", field, value)
	}
	return common.HexToAddress(value), nil
}
