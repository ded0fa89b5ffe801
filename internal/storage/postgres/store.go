package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolDeployer/internal/model"
)

// ErrSchemaMissing is returned by NewStore when the deployment tables do not exist.
var ErrSchemaMissing = errors.New("pool_deployments table missing; run `pooldeployer migrate`")

// Store provides Postgres persistence for deployment records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	var table *string
	if err := pool.QueryRow(ctx, `SELECT to_regclass('public.pool_deployments')::text`).Scan(&table); err != nil {
		pool.Close()
		return nil, fmt.Errorf("check schema: %w", err)
	}
	if table == nil {
		pool.Close()
		return nil, ErrSchemaMissing
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Record implements storage.Recorder.
func (s *Store) Record(ctx context.Context, record model.DeploymentRecord) error {
	return s.UpsertDeployment(ctx, record)
}

// UpsertDeployment inserts or updates a deployment and its transactions.
func (s *Store) UpsertDeployment(ctx context.Context, record model.DeploymentRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("run id required")
	}
	tokens, err := json.Marshal(record.Tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	amounts, err := json.Marshal(record.Amounts)
	if err != nil {
		return fmt.Errorf("marshal amounts: %w", err)
	}
	startedAt, err := parseTimestamp(record.StartedAt)
	if err != nil {
		return fmt.Errorf("started_at: %w", err)
	}
	finishedAt, err := parseTimestamp(record.FinishedAt)
	if err != nil {
		return fmt.Errorf("finished_at: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO pool_deployments (
			run_id, network, chain_id, deployer, pool_address, pool_id, tokens, amounts,
			oracle_price, total_supply, status, failed_stage, error, started_at, finished_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
		ON CONFLICT (run_id)
		DO UPDATE SET
			pool_address = EXCLUDED.pool_address,
			pool_id = EXCLUDED.pool_id,
			amounts = EXCLUDED.amounts,
			oracle_price = EXCLUDED.oracle_price,
			total_supply = EXCLUDED.total_supply,
			status = EXCLUDED.status,
			failed_stage = EXCLUDED.failed_stage,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at,
			updated_at = now()
	`,
		record.RunID,
		record.Network,
		int64(record.ChainID),
		record.Deployer,
		nullable(record.PoolAddress),
		nullable(record.PoolID),
		tokens,
		amounts,
		nullable(record.OraclePrice),
		nullable(record.TotalSupply),
		record.Status,
		nullable(record.FailedStage),
		nullable(record.Error),
		startedAt,
		finishedAt,
	)
	for i, tx := range record.Transactions {
		batch.Queue(`
			INSERT INTO pool_deployment_txs (
				run_id, seq, kind, tx_hash, status, gas_used, block_number, pending, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
			ON CONFLICT (run_id, seq)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				tx_hash = EXCLUDED.tx_hash,
				status = EXCLUDED.status,
				gas_used = EXCLUDED.gas_used,
				block_number = EXCLUDED.block_number,
				pending = EXCLUDED.pending
		`,
			record.RunID,
			i,
			tx.Kind,
			tx.Hash,
			int64(tx.Status),
			int64(tx.GasUsed),
			int64(tx.Block),
			tx.Pending,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LatestDeployment returns the most recent successful deployment on a network.
func (s *Store) LatestDeployment(ctx context.Context, network string) (model.DeploymentRecord, bool, error) {
	var rec model.DeploymentRecord
	var chainID int64
	var poolAddress, poolID, totalSupply *string
	var finishedAt time.Time
	row := s.pool.QueryRow(ctx, `
		SELECT run_id, network, chain_id, deployer, pool_address, pool_id, total_supply, status, finished_at
		FROM pool_deployments
		WHERE network = $1 AND status = $2
		ORDER BY finished_at DESC
		LIMIT 1
	`, network, model.DeploymentSucceeded)
	if err := row.Scan(&rec.RunID, &rec.Network, &chainID, &rec.Deployer, &poolAddress, &poolID, &totalSupply, &rec.Status, &finishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeploymentRecord{}, false, nil
		}
		return model.DeploymentRecord{}, false, err
	}
	rec.ChainID = uint64(chainID)
	rec.PoolAddress = deref(poolAddress)
	rec.PoolID = deref(poolID)
	rec.TotalSupply = deref(totalSupply)
	rec.FinishedAt = finishedAt.UTC().Format(time.RFC3339Nano)
	return rec, true, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
