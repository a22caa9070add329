package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fixedBlocks struct {
	values []uint64
	err    error
}

func (f *fixedBlocks) LatestBlockNumber(context.Context) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[0]
	if len(f.values) > 1 {
		f.values = f.values[1:]
	}
	return v, nil
}

func TestSystemClock(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewSystemClock(genesis, 400*time.Millisecond)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	c.Now = func() time.Time { return genesis.Add(10*time.Second + 100*time.Millisecond) }

	slot, err := c.Slot(context.Background())
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if slot != 25 {
		t.Fatalf("expected slot 25, got %d", slot)
	}

	c.Now = func() time.Time { return genesis.Add(-time.Second) }
	if _, err := c.Slot(context.Background()); err == nil {
		t.Fatalf("expected error before genesis")
	}

	if _, err := NewSystemClock(genesis, 0); err == nil {
		t.Fatalf("expected error for zero slot duration")
	}
}

func TestChainClock(t *testing.T) {
	c := &ChainClock{Client: &fixedBlocks{values: []uint64{123}}}
	slot, err := c.Slot(context.Background())
	if err != nil || slot != 123 {
		t.Fatalf("slot = %d, %v", slot, err)
	}

	boom := errors.New("rpc down")
	c = &ChainClock{Client: &fixedBlocks{err: boom}}
	if _, err := c.Slot(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped rpc error, got %v", err)
	}
}

func TestMonotonic(t *testing.T) {
	m := NewMonotonic(&ChainClock{Client: &fixedBlocks{values: []uint64{10, 12, 11, 15}}})
	want := []uint64{10, 12, 12, 15}
	for i, w := range want {
		got, err := m.Slot(context.Background())
		if err != nil {
			t.Fatalf("slot %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("slot %d: expected %d, got %d", i, w, got)
		}
	}
}
