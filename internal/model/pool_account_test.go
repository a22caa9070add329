package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"landauSwap/internal/amm"
	"landauSwap/internal/wide"
)

func sampleAccount(t *testing.T) PoolAccount {
	t.Helper()
	pool := amm.NewPool(amm.Rational)
	if err := pool.AddLiquidity(1_000_000, 2_000_000); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	if err := pool.SubmitOrder(amm.BForA, 12_345, 77); err != nil {
		t.Fatalf("submit: %v", err)
	}
	pool.Batch.NetDeltaB.Set(wide.MaxInt128())
	return PoolAccount{
		ID:          "0xabc",
		TokenA:      common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenB:      common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Authority:   common.HexToAddress("0x3333333333333333333333333333333333333333"),
		CreatedSlot: 5,
		Version:     3,
		State:       pool,
	}
}

func TestPoolAccountJSONKeepsWideDeltas(t *testing.T) {
	original := sampleAccount(t)

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"net_delta_b":"170141183460469231731687303715884105727"`) {
		t.Fatalf("delta should be stored as a decimal string: %s", b)
	}

	var decoded PoolAccount
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("decoded mismatch: %+v != %+v", original, decoded)
	}
}

func TestPoolRecordRejectsBrokenState(t *testing.T) {
	rec := sampleAccount(t).Record()

	negative := rec
	negative.NetDeltaA = "-5"
	if _, err := negative.Account(); !errors.Is(err, amm.ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}

	tooWide := rec
	tooWide.NetDeltaB = new(uint256.Int).Lsh(uint256.NewInt(1), 130).Dec()
	if _, err := tooWide.Account(); !errors.Is(err, amm.ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}

	orphan := rec
	orphan.OrderCount = 0
	if _, err := orphan.Account(); !errors.Is(err, amm.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}

	badCurve := rec
	badCurve.CurveType = "cubic"
	if _, err := badCurve.Account(); !errors.Is(err, amm.ErrUnsupportedCurve) {
		t.Fatalf("expected ErrUnsupportedCurve, got %v", err)
	}

	badToken := rec
	badToken.TokenA = "not-an-address"
	if _, err := badToken.Account(); err == nil {
		t.Fatalf("expected address error")
	}
}
