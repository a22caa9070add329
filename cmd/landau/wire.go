package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"landauSwap/internal/chain"
	"landauSwap/internal/clock"
	"landauSwap/internal/config"
	"landauSwap/internal/lock"
	"landauSwap/internal/observability"
	"landauSwap/internal/service"
	"landauSwap/internal/storage"
	"landauSwap/internal/storage/memory"
	"landauSwap/internal/storage/postgres"
)

// app is the wired settlement host for one command invocation.
type app struct {
	cfg         config.Config
	logger      *zap.Logger
	metrics     *observability.Metrics
	svc         *service.PoolService
	settlements storage.SettlementReader
	closers     []func()
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	store, settlements, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.settlements = settlements
	slots, err := a.openClock(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	locker, err := a.openLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = service.NewPoolService(service.Config{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, store, settlements, slots, locker, a.metrics, logger)

	logger.Debug("host wired",
		zap.String("store", cfg.Store),
		zap.String("clock", cfg.Clock),
		zap.String("lock", cfg.Lock),
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (storage.PoolStore, storage.SettlementLog, error) {
	switch a.cfg.Store {
	case config.StoreMemory:
		return memory.NewPoolStore(), memory.NewSettlementStore(), nil
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, a.cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	default:
		return storage.NewFilePoolStore(a.cfg.StoreDir), storage.NewJsonlSettlementSink(a.cfg.SettlementsOut), nil
	}
}

func (a *app) openClock(ctx context.Context) (clock.Source, error) {
	if a.cfg.Clock == config.ClockChain {
		client, err := chain.NewClient(ctx, a.cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		a.closers = append(a.closers, client.Close)

		chainID, err := client.GetChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("get chain id: %w", err)
		}
		a.logger.Info("chain clock connected",
			zap.String("rpc", a.cfg.RPCURL),
			zap.String("chain_id", chainID.String()),
		)
		return clock.NewMonotonic(&clock.ChainClock{Client: client}), nil
	}

	system, err := clock.NewSystemClock(a.cfg.Genesis, a.cfg.SlotDuration)
	if err != nil {
		return nil, err
	}
	return clock.NewMonotonic(system), nil
}

func (a *app) openLocker(ctx context.Context) (lock.Locker, error) {
	if a.cfg.Lock != config.LockRedis {
		return lock.NewLocalLocker(), nil
	}
	locker, err := lock.NewRedisLocker(ctx, lock.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
		TTL:      a.cfg.LockTTL,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = locker.Close() })
	return locker, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
