// Package clock supplies the ledger slot stamped on orders and settlements.
package clock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Source returns the current slot.
type Source interface {
	Slot(ctx context.Context) (uint64, error)
}

// SystemClock counts slot-duration ticks since Genesis.
type SystemClock struct {
	Genesis      time.Time
	SlotDuration time.Duration
	Now          func() time.Time
}

// NewSystemClock returns a clock with the given genesis and slot length.
func NewSystemClock(genesis time.Time, slotDuration time.Duration) (*SystemClock, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %s", slotDuration)
	}
	return &SystemClock{Genesis: genesis, SlotDuration: slotDuration, Now: time.Now}, nil
}

func (c *SystemClock) Slot(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	elapsed := now().Sub(c.Genesis)
	if elapsed < 0 {
		return 0, errors.New("clock is before genesis")
	}
	return uint64(elapsed / c.SlotDuration), nil
}

// BlockNumberer is the part of the chain client ChainClock reads from.
type BlockNumberer interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// ChainClock uses the latest block number as the slot.
type ChainClock struct {
	Client BlockNumberer
}

func (c *ChainClock) Slot(ctx context.Context) (uint64, error) {
	slot, err := c.Client.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch latest block: %w", err)
	}
	return slot, nil
}

// Monotonic never returns a slot lower than one it already returned.
type Monotonic struct {
	source Source

	mu   sync.Mutex
	last uint64
}

func NewMonotonic(source Source) *Monotonic {
	return &Monotonic{source: source}
}

func (m *Monotonic) Slot(ctx context.Context) (uint64, error) {
	slot, err := m.source.Slot(ctx)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if slot < m.last {
		return m.last, nil
	}
	m.last = slot
	return slot, nil
}

var (
	_ Source = (*SystemClock)(nil)
	_ Source = (*ChainClock)(nil)
	_ Source = (*Monotonic)(nil)
)
