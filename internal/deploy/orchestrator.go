package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"poolDeployer/internal/chain"
	"poolDeployer/internal/model"
)

// Orchestrator runs the pool deployment pipeline. It is single-use and not safe for
// concurrent use; every step waits for the previous one to confirm.
type Orchestrator struct {
	env     Env
	cfg     Config
	backend chain.Backend
	logger  *zap.Logger
	now     func() time.Time
	record  model.DeploymentRecord
}

// New builds an Orchestrator from an explicit execution context.
func New(env Env) *Orchestrator {
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := env.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		env:     env,
		cfg:     env.Config,
		backend: env.Backend,
		logger:  logger,
		now:     now,
	}
}

// Run creates, funds and reports a new pool. Any failure aborts the run; transactions
// already confirmed are not rolled back.
func (o *Orchestrator) Run(ctx context.Context) (result *Result, err error) {
	if o.backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment config: %w", err)
	}

	o.begin()
	defer func() { o.finish(ctx, err) }()

	if err := o.env.Guard.Check(); err != nil {
		return nil, &StageError{Stage: StageGuard, Err: err}
	}

	signer, err := step(ctx, o, StageSigner, o.resolveSigner)
	if err != nil {
		return nil, err
	}

	pool, err := step(ctx, o, StageCreatePool, func(ctx context.Context) (model.PoolIdentifier, error) {
		return o.createPool(ctx, signer)
	})
	if err != nil {
		return nil, err
	}

	quote, err := step(ctx, o, StageOraclePrice, o.fetchPrice)
	if err != nil {
		return nil, err
	}

	plan, err := step(ctx, o, StagePlan, func(ctx context.Context) (model.FundingPlan, error) {
		return o.buildPlan(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	if err := run(ctx, o, StageBalance, func(ctx context.Context) error {
		return o.ensureBalance(ctx, signer, plan)
	}); err != nil {
		return nil, err
	}

	if err := run(ctx, o, StageApprove, func(ctx context.Context) error {
		return o.approve(ctx, signer, plan)
	}); err != nil {
		return nil, err
	}

	joinReceipt, err := step(ctx, o, StageJoin, func(ctx context.Context) (*types.Receipt, error) {
		return o.join(ctx, signer, pool, plan)
	})
	if err != nil {
		return nil, err
	}

	supply, err := step(ctx, o, StageReport, func(ctx context.Context) (*big.Int, error) {
		return o.report(ctx, pool, joinReceipt)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:       o.record.RunID,
		Signer:      signer,
		Pool:        pool,
		Quote:       quote,
		Plan:        plan,
		JoinStatus:  joinReceipt.Status,
		TotalSupply: supply,
	}, nil
}

// Plan fetches the oracle price and computes the funding plan without sending transactions.
func (o *Orchestrator) Plan(ctx context.Context) (*model.PriceQuote, model.FundingPlan, error) {
	if o.backend == nil {
		return nil, model.FundingPlan{}, fmt.Errorf("backend is nil")
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, model.FundingPlan{}, fmt.Errorf("invalid deployment config: %w", err)
	}
	quote, err := step(ctx, o, StageOraclePrice, o.fetchPrice)
	if err != nil {
		return nil, model.FundingPlan{}, err
	}
	plan, err := step(ctx, o, StagePlan, func(ctx context.Context) (model.FundingPlan, error) {
		return o.buildPlan(ctx, quote)
	})
	if err != nil {
		return nil, model.FundingPlan{}, err
	}
	return quote, plan, nil
}

func step[T any](ctx context.Context, o *Orchestrator, stage Stage, fn func(context.Context) (T, error)) (T, error) {
	o.logger.Debug("stage start", zap.String("stage", string(stage)))
	start := o.now()
	out, err := fn(ctx)
	elapsed := o.now().Sub(start)
	o.env.Metrics.ObserveStage(string(stage), elapsed, err)
	if err != nil {
		o.logger.Error("stage failed", zap.String("stage", string(stage)), zap.Duration("elapsed", elapsed), zap.Error(err))
		var zero T
		return zero, &StageError{Stage: stage, Err: err}
	}
	o.logger.Info("stage complete", zap.String("stage", string(stage)), zap.Duration("elapsed", elapsed))
	return out, nil
}

func run(ctx context.Context, o *Orchestrator, stage Stage, fn func(context.Context) error) error {
	_, err := step(ctx, o, stage, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// transact submits one transaction and appends it to the run record. A transaction that
// was broadcast but not confirmed is recorded as pending.
func (o *Orchestrator) transact(ctx context.Context, kind string, req chain.TxRequest) (*types.Receipt, error) {
	receipt, err := o.backend.Transact(ctx, req)
	var pending *chain.PendingTxError
	switch {
	case receipt != nil:
		ref := model.TxRef{
			Kind:    kind,
			Hash:    receipt.TxHash.Hex(),
			Status:  receipt.Status,
			GasUsed: receipt.GasUsed,
		}
		if receipt.BlockNumber != nil {
			ref.Block = receipt.BlockNumber.Uint64()
		}
		o.record.Transactions = append(o.record.Transactions, ref)
		o.env.Metrics.ObserveTx(kind, receipt.GasUsed, err)
	case errors.As(err, &pending):
		o.record.Transactions = append(o.record.Transactions, model.TxRef{
			Kind:    kind,
			Hash:    pending.Hash.Hex(),
			Pending: true,
		})
		o.logger.Error("tx not confirmed", zap.String("kind", kind), zap.String("hash", pending.Hash.Hex()), zap.Error(err))
		o.env.Metrics.ObserveTx(kind, 0, err)
	default:
		o.env.Metrics.ObserveTx(kind, 0, err)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("tx confirmed",
		zap.String("kind", kind),
		zap.String("hash", receipt.TxHash.Hex()),
		zap.Uint64("status", receipt.Status),
		zap.Uint64("gas_used", receipt.GasUsed),
	)
	return receipt, nil
}

func (o *Orchestrator) begin() {
	tokens := make([]string, 0, len(o.cfg.Request.Tokens))
	for _, token := range o.cfg.Request.Tokens {
		tokens = append(tokens, token.Hex())
	}
	o.record = model.DeploymentRecord{
		RunID:        uuid.NewString(),
		Network:      o.cfg.Network,
		Tokens:       tokens,
		Transactions: []model.TxRef{},
		StartedAt:    o.now().UTC().Format(time.RFC3339Nano),
	}
	if chainID := o.backend.ChainID(); chainID != nil && chainID.IsUint64() {
		o.record.ChainID = chainID.Uint64()
	}
	o.logger.Info("deployment start",
		zap.String("run_id", o.record.RunID),
		zap.String("network", o.cfg.Network),
		zap.Uint64("chain_id", o.record.ChainID),
		zap.String("factory", o.cfg.Factory.Hex()),
		zap.String("vault", o.cfg.Vault.Hex()),
	)
}

func (o *Orchestrator) finish(ctx context.Context, runErr error) {
	o.record.FinishedAt = o.now().UTC().Format(time.RFC3339Nano)
	if runErr != nil {
		o.record.Status = model.DeploymentFailed
		o.record.Error = runErr.Error()
		var stageErr *StageError
		if errors.As(runErr, &stageErr) {
			o.record.FailedStage = string(stageErr.Stage)
		}
	} else {
		o.record.Status = model.DeploymentSucceeded
	}
	o.env.Metrics.ObserveRun(o.record.Status)

	if o.env.Recorder != nil {
		if err := o.env.Recorder.Record(context.WithoutCancel(ctx), o.record); err != nil {
			o.logger.Warn("record deployment failed", zap.String("run_id", o.record.RunID), zap.Error(err))
		}
	}

	o.logger.Info("deployment finished",
		zap.String("run_id", o.record.RunID),
		zap.String("status", o.record.Status),
		zap.String("pool", o.record.PoolAddress),
		zap.Int("transactions", len(o.record.Transactions)),
	)
}
