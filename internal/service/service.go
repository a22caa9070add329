// Package service hosts the settlement core: it serializes access per pool,
// stamps slots, persists accounts with optimistic versioning and records
// settlements.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"landauSwap/internal/amm"
	"landauSwap/internal/auth"
	"landauSwap/internal/clock"
	"landauSwap/internal/lock"
	"landauSwap/internal/model"
	"landauSwap/internal/observability"
	"landauSwap/internal/storage"
	"landauSwap/internal/wide"
)

// Operation labels used in logs and metrics.
const (
	opInitialize = "initialize_pool"
	opAdd        = "add_liquidity"
	opRemove     = "remove_liquidity"
	opOrder      = "submit_order"
	opSettle     = "settle"
	opQuote      = "quote"
)

// Config holds retry settings for contended pools.
type Config struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// InitPoolRequest describes a new pool.
type InitPoolRequest struct {
	TokenA    common.Address
	TokenB    common.Address
	Authority common.Address
	Curve     amm.CurveType
}

// LiquidityRequest is a signed liquidity change against a known pool version.
type LiquidityRequest struct {
	PoolID    string
	AmountA   uint64
	AmountB   uint64
	Signature []byte
}

// PoolService runs pool operations on top of the pure settlement core.
type PoolService struct {
	cfg     Config
	store   storage.PoolStore
	sink    storage.SettlementSink
	clock   clock.Source
	locker  lock.Locker
	metrics *observability.Metrics
	logger  *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewPoolService builds a PoolService. A nil locker serializes in process
// only; nil metrics and logger are replaced with private instances.
func NewPoolService(
	cfg Config,
	store storage.PoolStore,
	sink storage.SettlementSink,
	slots clock.Source,
	locker lock.Locker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PoolService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolService{
		cfg:     cfg,
		store:   store,
		sink:    sink,
		clock:   slots,
		locker:  locker,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// InitializePool creates an empty pool for the token pair.
func (s *PoolService) InitializePool(ctx context.Context, req InitPoolRequest) (model.PoolAccount, error) {
	if req.TokenA == req.TokenB {
		return model.PoolAccount{}, s.fail(opInitialize, "", fmt.Errorf("%w: identical tokens", amm.ErrInvalidDirection))
	}
	if req.Curve != amm.Rational && req.Curve != amm.Exponential {
		return model.PoolAccount{}, s.fail(opInitialize, "", amm.ErrUnsupportedCurve)
	}

	slot, err := s.clock.Slot(ctx)
	if err != nil {
		return model.PoolAccount{}, s.fail(opInitialize, "", fmt.Errorf("read slot: %w", err))
	}

	account := model.PoolAccount{
		ID:          PoolID(req.TokenA, req.TokenB),
		TokenA:      req.TokenA,
		TokenB:      req.TokenB,
		Authority:   req.Authority,
		CreatedSlot: slot,
		State:       amm.NewPool(req.Curve),
	}
	account.State.Batch.LastUpdatedSlot = slot

	if err := s.store.Create(ctx, account); err != nil {
		return model.PoolAccount{}, s.fail(opInitialize, account.ID, fmt.Errorf("create pool: %w", err))
	}

	s.logger.Info("pool initialized",
		zap.String("pool", account.ID),
		zap.String("token_a", req.TokenA.Hex()),
		zap.String("token_b", req.TokenB.Hex()),
		zap.String("authority", req.Authority.Hex()),
		zap.String("curve", req.Curve.String()),
		zap.Uint64("slot", slot),
	)
	return account, nil
}

// AddLiquidity credits reserves after checking the authority signature.
func (s *PoolService) AddLiquidity(ctx context.Context, req LiquidityRequest) (model.PoolAccount, error) {
	return s.changeLiquidity(ctx, opAdd, auth.OpAddLiquidity, req)
}

// RemoveLiquidity debits reserves after checking the authority signature.
func (s *PoolService) RemoveLiquidity(ctx context.Context, req LiquidityRequest) (model.PoolAccount, error) {
	return s.changeLiquidity(ctx, opRemove, auth.OpRemoveLiquidity, req)
}

func (s *PoolService) changeLiquidity(ctx context.Context, op string, authOp auth.Operation, req LiquidityRequest) (model.PoolAccount, error) {
	account, err := s.mutate(ctx, op, req.PoolID, func(next *model.PoolAccount, _ uint64) error {
		signed := auth.Request{
			Op:      authOp,
			PoolID:  next.ID,
			AmountA: req.AmountA,
			AmountB: req.AmountB,
			Version: next.Version,
		}
		if err := auth.Authorize(signed, req.Signature, next.Authority); err != nil {
			return err
		}
		if authOp == auth.OpRemoveLiquidity {
			return next.State.RemoveLiquidity(req.AmountA, req.AmountB)
		}
		return next.State.AddLiquidity(req.AmountA, req.AmountB)
	})
	if err != nil {
		return model.PoolAccount{}, err
	}

	s.metrics.LiquidityChanges.WithLabelValues(op).Inc()
	msg := "liquidity added"
	if authOp == auth.OpRemoveLiquidity {
		msg = "liquidity removed"
	}
	s.logger.Info(msg,
		zap.String("pool", account.ID),
		zap.Uint64("amount_a", req.AmountA),
		zap.Uint64("amount_b", req.AmountB),
		zap.Uint64("reserve_a", account.State.ReserveA),
		zap.Uint64("reserve_b", account.State.ReserveB),
		zap.Uint64("version", account.Version),
	)
	return account, nil
}

// SubmitOrder folds an order into the open batch of the pool.
func (s *PoolService) SubmitOrder(ctx context.Context, poolID string, direction amm.Direction, amount uint64) (model.PoolAccount, error) {
	account, err := s.mutate(ctx, opOrder, poolID, func(next *model.PoolAccount, slot uint64) error {
		return next.State.SubmitOrder(direction, amount, slot)
	})
	if err != nil {
		return model.PoolAccount{}, err
	}

	s.metrics.OrdersSubmitted.WithLabelValues(direction.String()).Inc()
	s.logger.Info("order placed",
		zap.String("pool", account.ID),
		zap.String("direction", direction.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("batch_id", account.State.Batch.BatchID),
		zap.Uint32("order_count", account.State.Batch.OrderCount),
		zap.Uint64("slot", account.State.Batch.LastUpdatedSlot),
	)
	return account, nil
}

// Settle settles the open batch of the pool and records the result.
// The pool account is the commit point: if recording fails afterwards the
// settled state stands and the returned error wraps the sink failure.
func (s *PoolService) Settle(ctx context.Context, poolID string) (model.Settlement, error) {
	start := s.now()

	var (
		summary amm.SettlementSummary
		slot    uint64
	)
	account, err := s.mutate(ctx, opSettle, poolID, func(next *model.PoolAccount, current uint64) error {
		var err error
		summary, err = next.State.Settle(current)
		slot = current
		return err
	})
	if err != nil {
		return model.Settlement{}, err
	}

	settlement := model.Settlement{
		ID:         s.newID(),
		PoolID:     account.ID,
		BatchID:    summary.BatchID,
		Direction:  summary.Direction.String(),
		AmountIn:   summary.AmountIn,
		AmountOut:  summary.AmountOut,
		Fee:        summary.Fee,
		FeeRate:    summary.FeeRate().String(),
		OrderCount: summary.OrderCount,
		ReserveA:   account.State.ReserveA,
		ReserveB:   account.State.ReserveB,
		Slot:       slot,
		SettledAt:  s.now().UTC(),
	}

	s.observeSettlement(summary, slot, s.now().Sub(start))
	s.logger.Info("batch settled",
		zap.String("pool", account.ID),
		zap.String("settlement", settlement.ID),
		zap.String("direction", settlement.Direction),
		zap.Uint64("batch_id", summary.BatchID),
		zap.Uint64("new_batch_id", summary.NewBatchID),
		zap.Uint32("orders", summary.OrderCount),
		zap.Uint64("amount_in", summary.AmountIn),
		zap.Uint64("amount_out", summary.AmountOut),
		zap.Uint64("fee", summary.Fee),
		zap.String("fee_rate", settlement.FeeRate),
		zap.Uint64("slot", slot),
	)

	if s.sink != nil {
		err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(err error) bool {
			return !errors.Is(err, storage.ErrAlreadyExists) && !errors.Is(err, storage.ErrInvalidInput)
		}, func(ctx context.Context) error {
			return s.sink.PutSettlements(ctx, []model.Settlement{settlement})
		})
		if err != nil {
			s.metrics.Failures.WithLabelValues("record_settlement", failureKind(err)).Inc()
			s.logger.Error("record settlement failed", zap.String("pool", account.ID), zap.String("settlement", settlement.ID), zap.Error(err))
			return settlement, fmt.Errorf("record settlement: %w", err)
		}
	}
	return settlement, nil
}

// Quote previews amount against the current reserves of the pool.
func (s *PoolService) Quote(ctx context.Context, poolID string, direction amm.Direction, amount uint64) (amm.Trade, error) {
	account, err := s.store.Get(ctx, poolID)
	if err != nil {
		return amm.Trade{}, s.fail(opQuote, poolID, fmt.Errorf("load pool: %w", err))
	}
	trade, err := account.State.Quote(direction, amount)
	if err != nil {
		return amm.Trade{}, s.fail(opQuote, poolID, err)
	}
	return trade, nil
}

// Get returns the stored pool.
func (s *PoolService) Get(ctx context.Context, poolID string) (model.PoolAccount, error) {
	account, err := s.store.Get(ctx, poolID)
	if err != nil {
		return model.PoolAccount{}, fmt.Errorf("load pool: %w", err)
	}
	return account, nil
}

// List returns every stored pool.
func (s *PoolService) List(ctx context.Context) ([]model.PoolAccount, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	return accounts, nil
}

// mutate applies fn to a copy of the pool under the pool lock and persists
// the copy with the next version. Contention is retried with backoff.
func (s *PoolService) mutate(ctx context.Context, op, poolID string, fn func(next *model.PoolAccount, slot uint64) error) (model.PoolAccount, error) {
	var committed model.PoolAccount
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, isContention, func(ctx context.Context) error {
		release, err := s.locker.Acquire(ctx, poolID)
		if err != nil {
			return err
		}
		defer release()

		slot, err := s.clock.Slot(ctx)
		if err != nil {
			return fmt.Errorf("read slot: %w", err)
		}

		account, err := s.store.Get(ctx, poolID)
		if err != nil {
			return fmt.Errorf("load pool: %w", err)
		}

		next := account
		if err := fn(&next, slot); err != nil {
			return err
		}
		version, err := wide.AddUint64(account.Version, 1)
		if err != nil {
			return err
		}
		next.Version = version

		if err := s.store.Update(ctx, next); err != nil {
			return fmt.Errorf("update pool: %w", err)
		}
		committed = next
		return nil
	})
	if err != nil {
		return model.PoolAccount{}, s.fail(op, poolID, err)
	}
	return committed, nil
}

func (s *PoolService) fail(op, poolID string, err error) error {
	kind := failureKind(err)
	s.metrics.Failures.WithLabelValues(op, kind).Inc()
	s.logger.Warn("pool operation rejected",
		zap.String("operation", op),
		zap.String("pool", poolID),
		zap.String("kind", kind),
		zap.Error(err),
	)
	return err
}

func (s *PoolService) observeSettlement(summary amm.SettlementSummary, slot uint64, elapsed time.Duration) {
	assetIn, assetOut := "a", "b"
	if summary.Direction == amm.BForA {
		assetIn, assetOut = "b", "a"
	}
	s.metrics.Settlements.WithLabelValues(summary.Direction.String()).Inc()
	s.metrics.VolumeIn.WithLabelValues(assetIn).Add(float64(summary.AmountIn))
	s.metrics.FeesCollected.WithLabelValues(assetOut).Add(float64(summary.Fee))
	s.metrics.OrdersPerBatch.Observe(float64(summary.OrderCount))
	ratio, _ := summary.FeeRate().Float64()
	s.metrics.FeeRatio.Observe(ratio)
	s.metrics.LastSettledSlot.Set(float64(slot))
	s.metrics.SettleDuration.Observe(elapsed.Seconds())
}

// failureKind labels host errors first and falls back to the core taxonomy.
func failureKind(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, storage.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, storage.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, lock.ErrLockHeld):
		return "lock_held"
	case errors.Is(err, auth.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return amm.ErrorKind(err)
	}
}
