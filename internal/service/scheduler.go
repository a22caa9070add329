package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"landauSwap/internal/amm"
)

// SchedulerConfig controls the batch-boundary trigger.
type SchedulerConfig struct {
	Interval time.Duration
	// Pools restricts settlement to these ids; empty means every stored pool.
	Pools []string
}

// SweepResult counts the outcome of one pass over the pools.
type SweepResult struct {
	Settled int
	Skipped int
	Failed  int
}

// Scheduler closes batch windows: every Interval it settles each pool that
// holds a dirty batch.
type Scheduler struct {
	cfg     SchedulerConfig
	service *PoolService
	logger  *zap.Logger
}

func NewScheduler(cfg SchedulerConfig, svc *PoolService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cfg: cfg, service: svc, logger: logger}
}

// Run sweeps until ctx is cancelled. A failed sweep is logged and the loop
// continues.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.service == nil {
		return fmt.Errorf("pool service is nil")
	}
	if s.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}

	s.logger.Info("scheduler start", zap.Duration("interval", s.cfg.Interval), zap.Int("pools", len(s.cfg.Pools)))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stop")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep settles every dirty pool once. Pool failures are counted, not returned;
// only a failure to enumerate pools is an error.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	ids, err := s.targets(ctx)
	if err != nil {
		return result, err
	}
	s.service.metrics.SchedulerSweeps.Inc()

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		account, err := s.service.Get(ctx, id)
		if err != nil {
			result.Failed++
			s.logger.Warn("load pool failed", zap.String("pool", id), zap.Error(err))
			continue
		}
		if !account.State.Batch.Dirty() {
			result.Skipped++
			continue
		}

		if _, err := s.service.Settle(ctx, id); err != nil {
			// Another settler may have closed the batch between Get and Settle.
			if errors.Is(err, amm.ErrEmptyBatch) {
				result.Skipped++
				continue
			}
			result.Failed++
			s.logger.Warn("settle failed", zap.String("pool", id), zap.String("kind", failureKind(err)), zap.Error(err))
			continue
		}
		result.Settled++
	}

	if result.Settled > 0 || result.Failed > 0 {
		s.logger.Info("sweep complete",
			zap.Int("settled", result.Settled),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

func (s *Scheduler) targets(ctx context.Context) ([]string, error) {
	if len(s.cfg.Pools) > 0 {
		ids := make([]string, 0, len(s.cfg.Pools))
		for _, id := range s.cfg.Pools {
			// Pool ids are stored lower-case.
			if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	accounts, err := s.service.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	return ids, nil
}
