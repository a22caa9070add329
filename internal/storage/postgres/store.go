package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"landauSwap/internal/model"
	"landauSwap/internal/storage"
)

const pgErrUniqueViolation = "23505"

// Store provides Postgres persistence for pools and settlements.
// uint64 values are written as NUMERIC and read back as text.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const poolColumns = `id, token_a, token_b, authority, curve_type,
	created_slot::text, version::text, reserve_a::text, reserve_b::text,
	accumulated_fee_a::text, accumulated_fee_b::text, batch_id::text,
	net_delta_a::text, net_delta_b::text, order_count, last_updated_slot::text`

// Create inserts a new pool. Returns storage.ErrAlreadyExists on a duplicate
// id or token pair.
func (s *Store) Create(ctx context.Context, account model.PoolAccount) error {
	if account.ID == "" {
		return storage.ErrInvalidInput
	}
	rec := account.Record()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (
			id, token_a, token_b, authority, curve_type, created_slot, version,
			reserve_a, reserve_b, accumulated_fee_a, accumulated_fee_b,
			batch_id, net_delta_a, net_delta_b, order_count, last_updated_slot,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10::numeric,$11::numeric,
			$12::numeric,$13::numeric,$14::numeric,$15,$16::numeric,now(),now())
	`,
		rec.ID,
		rec.TokenA,
		rec.TokenB,
		rec.Authority,
		rec.CurveType,
		u64(rec.CreatedSlot),
		u64(rec.Version),
		u64(rec.ReserveA),
		u64(rec.ReserveB),
		u64(rec.AccumulatedFeeA),
		u64(rec.AccumulatedFeeB),
		u64(rec.BatchID),
		rec.NetDeltaA,
		rec.NetDeltaB,
		int64(rec.OrderCount),
		u64(rec.LastUpdatedSlot),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

// Get loads and validates a pool.
func (s *Store) Get(ctx context.Context, id string) (model.PoolAccount, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE id=$1`, id)
	account, err := scanPool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolAccount{}, storage.ErrNotFound
		}
		return model.PoolAccount{}, err
	}
	return account, nil
}

// Update writes account if the stored version is account.Version-1.
func (s *Store) Update(ctx context.Context, account model.PoolAccount) error {
	if account.Version == 0 {
		return storage.ErrVersionConflict
	}
	rec := account.Record()
	tag, err := s.pool.Exec(ctx, `
		UPDATE pools SET
			version = $2::numeric,
			reserve_a = $3::numeric,
			reserve_b = $4::numeric,
			accumulated_fee_a = $5::numeric,
			accumulated_fee_b = $6::numeric,
			batch_id = $7::numeric,
			net_delta_a = $8::numeric,
			net_delta_b = $9::numeric,
			order_count = $10,
			last_updated_slot = $11::numeric,
			updated_at = now()
		WHERE id = $1 AND version = $12::numeric
	`,
		rec.ID,
		u64(rec.Version),
		u64(rec.ReserveA),
		u64(rec.ReserveB),
		u64(rec.AccumulatedFeeA),
		u64(rec.AccumulatedFeeB),
		u64(rec.BatchID),
		rec.NetDeltaA,
		rec.NetDeltaB,
		int64(rec.OrderCount),
		u64(rec.LastUpdatedSlot),
		u64(rec.Version-1),
	)
	if err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pools WHERE id=$1)`, rec.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check pool: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrVersionConflict
}

// List returns every pool ordered by id.
func (s *Store) List(ctx context.Context) ([]model.PoolAccount, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+poolColumns+` FROM pools ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	var accounts []model.PoolAccount
	for rows.Next() {
		account, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return accounts, nil
}

// PutSettlements inserts settlements in one batch.
func (s *Store) PutSettlements(ctx context.Context, settlements []model.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range settlements {
		batch.Queue(`
			INSERT INTO settlements (
				id, pool_id, batch_id, direction, amount_in, amount_out, fee, fee_rate,
				order_count, reserve_a, reserve_b, slot, settled_at
			) VALUES ($1,$2,$3::numeric,$4,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9,$10::numeric,$11::numeric,$12::numeric,$13)
		`,
			st.ID,
			st.PoolID,
			u64(st.BatchID),
			st.Direction,
			u64(st.AmountIn),
			u64(st.AmountOut),
			u64(st.Fee),
			feeRate(st.FeeRate),
			int64(st.OrderCount),
			u64(st.ReserveA),
			u64(st.ReserveB),
			u64(st.Slot),
			st.SettledAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range settlements {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert settlement: %w", err)
		}
	}
	return nil
}

// ListSettlements returns the settlements of poolID ordered by batch id.
func (s *Store) ListSettlements(ctx context.Context, poolID string) ([]model.Settlement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, pool_id, batch_id::text, direction, amount_in::text, amount_out::text,
			fee::text, fee_rate::text, order_count, reserve_a::text, reserve_b::text, slot::text, settled_at
		FROM settlements WHERE pool_id=$1 ORDER BY batch_id
	`, poolID)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var result []model.Settlement
	for rows.Next() {
		var (
			st                                model.Settlement
			batchID, amountIn, amountOut, fee string
			reserveA, reserveB, slot          string
			orderCount                        int64
			settledAt                         time.Time
		)
		if err := rows.Scan(&st.ID, &st.PoolID, &batchID, &st.Direction, &amountIn, &amountOut,
			&fee, &st.FeeRate, &orderCount, &reserveA, &reserveB, &slot, &settledAt); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		var p parser
		st.BatchID = p.u64("batch_id", batchID)
		st.AmountIn = p.u64("amount_in", amountIn)
		st.AmountOut = p.u64("amount_out", amountOut)
		st.Fee = p.u64("fee", fee)
		st.ReserveA = p.u64("reserve_a", reserveA)
		st.ReserveB = p.u64("reserve_b", reserveB)
		st.Slot = p.u64("slot", slot)
		if p.err != nil {
			return nil, p.err
		}
		st.OrderCount = uint32(orderCount)
		st.SettledAt = settledAt.UTC()
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return result, nil
}

func scanPool(row pgx.Row) (model.PoolAccount, error) {
	var (
		rec                                      model.PoolRecord
		createdSlot, version, reserveA, reserveB string
		feeA, feeB, batchID, lastUpdated         string
		orderCount                               int64
	)
	if err := row.Scan(&rec.ID, &rec.TokenA, &rec.TokenB, &rec.Authority, &rec.CurveType,
		&createdSlot, &version, &reserveA, &reserveB, &feeA, &feeB, &batchID,
		&rec.NetDeltaA, &rec.NetDeltaB, &orderCount, &lastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolAccount{}, err
		}
		return model.PoolAccount{}, fmt.Errorf("scan pool: %w", err)
	}

	var p parser
	rec.CreatedSlot = p.u64("created_slot", createdSlot)
	rec.Version = p.u64("version", version)
	rec.ReserveA = p.u64("reserve_a", reserveA)
	rec.ReserveB = p.u64("reserve_b", reserveB)
	rec.AccumulatedFeeA = p.u64("accumulated_fee_a", feeA)
	rec.AccumulatedFeeB = p.u64("accumulated_fee_b", feeB)
	rec.BatchID = p.u64("batch_id", batchID)
	rec.LastUpdatedSlot = p.u64("last_updated_slot", lastUpdated)
	if p.err != nil {
		return model.PoolAccount{}, p.err
	}
	if orderCount < 0 || orderCount > int64(^uint32(0)) {
		return model.PoolAccount{}, fmt.Errorf("pool %s order_count out of range: %d", rec.ID, orderCount)
	}
	rec.OrderCount = uint32(orderCount)

	return rec.Account()
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) u64(column, value string) uint64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", column, err)
	}
	return v
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func feeRate(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

var (
	_ storage.PoolStore        = (*Store)(nil)
	_ storage.SettlementSink   = (*Store)(nil)
	_ storage.SettlementReader = (*Store)(nil)
)
