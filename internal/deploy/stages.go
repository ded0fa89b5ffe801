package deploy

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolDeployer/internal/chain"
	"poolDeployer/internal/dex"
	"poolDeployer/internal/funding"
	"poolDeployer/internal/model"
)

func (o *Orchestrator) resolveSigner(context.Context) (model.SigningIdentity, error) {
	accounts := o.backend.Accounts()
	if len(accounts) == 0 {
		return model.SigningIdentity{}, ErrNoSigner
	}
	signer := model.SigningIdentity{Address: accounts[0]}
	o.record.Deployer = signer.Address.Hex()
	o.logger.Info("signer", zap.String("address", signer.Address.Hex()), zap.Int("accounts", len(accounts)))
	return signer, nil
}

func (o *Orchestrator) createPool(ctx context.Context, signer model.SigningIdentity) (model.PoolIdentifier, error) {
	req := o.cfg.Request
	if req.Owner == (common.Address{}) {
		o.logger.Warn("pool owner is the zero address; swap fee will be immutable")
	}
	data, err := dex.PackCreate(req)
	if err != nil {
		return model.PoolIdentifier{}, err
	}
	receipt, err := o.transact(ctx, "create_pool", chain.TxRequest{From: signer.Address, To: o.cfg.Factory, Data: data})
	if err != nil {
		return model.PoolIdentifier{}, err
	}

	addr, err := dex.ParsePoolCreated(receipt, o.cfg.Factory)
	if err != nil {
		return model.PoolIdentifier{}, fmt.Errorf("tx %s: %w", receipt.TxHash.Hex(), err)
	}
	o.record.PoolAddress = addr.Hex()
	o.logger.Info("pool created", zap.String("pool", addr.Hex()), zap.String("name", req.Name), zap.String("symbol", req.Symbol))

	// The pool exists from here on; losing the marker only weakens the rerun check.
	if err := o.env.Guard.Mark(Marker{
		RunID:       o.record.RunID,
		Network:     o.cfg.Network,
		PoolAddress: addr.Hex(),
		CreatedAt:   o.now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		o.logger.Error("write guard marker failed", zap.Error(err))
	}

	id, err := dex.PoolID(ctx, o.backend, addr)
	if err != nil {
		return model.PoolIdentifier{}, err
	}
	o.record.PoolID = id.Hex()
	o.logger.Info("pool id", zap.String("pool_id", id.Hex()))
	return model.PoolIdentifier{Address: addr, ID: id}, nil
}

// fetchPrice returns nil when no token is oracle-priced.
func (o *Orchestrator) fetchPrice(ctx context.Context) (*model.PriceQuote, error) {
	if !funding.NeedsOracle(o.cfg.Tokens) {
		o.logger.Info("no oracle-priced tokens, skipping oracle")
		return nil, nil
	}

	decimals, err := dex.OracleDecimals(ctx, o.backend, o.cfg.Oracle)
	if err != nil {
		return nil, err
	}
	if decimals != o.cfg.OracleDecimals {
		return nil, fmt.Errorf("%w: oracle %s reports %d, configured %d",
			ErrOracleDecimals, o.cfg.Oracle.Hex(), decimals, o.cfg.OracleDecimals)
	}

	answer, err := dex.LatestAnswer(ctx, o.backend, o.cfg.Oracle)
	if err != nil {
		return nil, err
	}
	quote := &model.PriceQuote{Answer: answer, Decimals: decimals}
	price18, err := funding.Price18(*quote)
	if err != nil {
		return nil, err
	}
	o.record.OraclePrice = price18.String()
	o.logger.Info("oracle price",
		zap.String("oracle", o.cfg.Oracle.Hex()),
		zap.String("answer", answer.String()),
		zap.String("price", funding.FormatAmount(price18, funding.Decimals18)),
	)
	return quote, nil
}

// verifyTokenDecimals reads decimals() of every token; amounts are sized from the configured value.
func (o *Orchestrator) verifyTokenDecimals(ctx context.Context) error {
	for _, token := range o.cfg.Tokens {
		decimals, err := dex.TokenDecimals(ctx, o.backend, token.Address)
		if err != nil {
			return fmt.Errorf("token %s: %w", token.Symbol, err)
		}
		if decimals != token.Decimals {
			return fmt.Errorf("%w: %s reports %d, configured %d", ErrTokenDecimals, token.Symbol, decimals, token.Decimals)
		}
	}
	return nil
}

func (o *Orchestrator) buildPlan(ctx context.Context, quote *model.PriceQuote) (model.FundingPlan, error) {
	if err := o.verifyTokenDecimals(ctx); err != nil {
		return model.FundingPlan{}, err
	}

	var price18 *big.Int
	if quote != nil {
		var err error
		if price18, err = funding.Price18(*quote); err != nil {
			return model.FundingPlan{}, err
		}
	}
	plan, err := funding.ComputePlan(o.cfg.Tokens, o.cfg.TargetValue, price18)
	if err != nil {
		return model.FundingPlan{}, err
	}
	plan.MaxAmountsIn = funding.WithTolerance(plan.Amounts, o.cfg.MaxInToleranceBps)

	amounts := make([]string, 0, len(plan.Amounts))
	for i, token := range o.cfg.Tokens {
		amounts = append(amounts, plan.Amounts[i].String())
		o.logger.Info("planned deposit",
			zap.String("token", token.Symbol),
			zap.String("address", token.Address.Hex()),
			zap.String("amount", funding.FormatAmount(plan.Amounts[i], token.Decimals)),
			zap.String("max_in", funding.FormatAmount(plan.MaxAmountsIn[i], token.Decimals)),
		)
	}
	o.record.Amounts = amounts
	return plan, nil
}

func (o *Orchestrator) ensureBalance(ctx context.Context, signer model.SigningIdentity, plan model.FundingPlan) error {
	for i, token := range o.cfg.Tokens {
		need := plan.Amounts[i]
		balance, err := dex.BalanceOf(ctx, o.backend, plan.Tokens[i], signer.Address)
		if err != nil {
			return err
		}
		o.logger.Info("token balance",
			zap.String("token", token.Symbol),
			zap.String("balance", funding.FormatAmount(balance, token.Decimals)),
			zap.String("needed", funding.FormatAmount(need, token.Decimals)),
		)
		if balance.Cmp(need) >= 0 {
			continue
		}

		shortfall := new(big.Int).Sub(need, balance)
		if !token.Wrapped {
			return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientToken, token.Symbol,
				funding.FormatAmount(balance, token.Decimals), funding.FormatAmount(need, token.Decimals))
		}
		if err := o.wrap(ctx, signer, token, shortfall); err != nil {
			return err
		}

		balance, err = dex.BalanceOf(ctx, o.backend, plan.Tokens[i], signer.Address)
		if err != nil {
			return err
		}
		if balance.Cmp(need) < 0 {
			return fmt.Errorf("%w: %s has %s after wrapping, needs %s", ErrInsufficientToken, token.Symbol,
				funding.FormatAmount(balance, token.Decimals), funding.FormatAmount(need, token.Decimals))
		}
	}
	return nil
}

func (o *Orchestrator) wrap(ctx context.Context, signer model.SigningIdentity, token model.TokenSpec, amount *big.Int) error {
	native, err := o.backend.NativeBalance(ctx, signer.Address)
	if err != nil {
		return fmt.Errorf("native balance: %w", err)
	}
	if native.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientNative,
			funding.FormatAmount(native, funding.Decimals18), funding.FormatAmount(amount, funding.Decimals18))
	}

	o.logger.Info("wrapping native shortfall",
		zap.String("token", token.Symbol),
		zap.String("amount", funding.FormatAmount(amount, token.Decimals)),
	)
	data, err := dex.PackDeposit()
	if err != nil {
		return err
	}
	if _, err := o.transact(ctx, "wrap", chain.TxRequest{
		From:  signer.Address,
		To:    token.Address,
		Data:  data,
		Value: new(big.Int).Set(amount),
	}); err != nil {
		return fmt.Errorf("wrap %s: %w", token.Symbol, err)
	}
	return nil
}

// approve confirms every allowance before returning; join must not start earlier.
func (o *Orchestrator) approve(ctx context.Context, signer model.SigningIdentity, plan model.FundingPlan) error {
	for i, token := range plan.Tokens {
		data, err := dex.PackApprove(o.cfg.Vault, plan.MaxAmountsIn[i])
		if err != nil {
			return err
		}
		if _, err := o.transact(ctx, "approve", chain.TxRequest{From: signer.Address, To: token, Data: data}); err != nil {
			return fmt.Errorf("token %s: %w", token.Hex(), err)
		}
	}
	return nil
}

func (o *Orchestrator) join(ctx context.Context, signer model.SigningIdentity, pool model.PoolIdentifier, plan model.FundingPlan) (*types.Receipt, error) {
	userData, err := dex.EncodeInitJoin(plan.Amounts)
	if err != nil {
		return nil, err
	}
	data, err := dex.PackJoinPool(pool.ID, signer.Address, signer.Address, dex.JoinPoolRequest{
		Assets:       plan.Tokens,
		MaxAmountsIn: plan.MaxAmountsIn,
		UserData:     userData,
	})
	if err != nil {
		return nil, err
	}
	return o.transact(ctx, "join_pool", chain.TxRequest{From: signer.Address, To: o.cfg.Vault, Data: data})
}

func (o *Orchestrator) report(ctx context.Context, pool model.PoolIdentifier, joinReceipt *types.Receipt) (*big.Int, error) {
	supply, err := dex.TotalSupply(ctx, o.backend, pool.Address)
	if err != nil {
		return nil, err
	}
	o.record.TotalSupply = supply.String()
	o.logger.Info("final tx status",
		zap.Uint64("status", joinReceipt.Status),
		zap.String("hash", joinReceipt.TxHash.Hex()),
		zap.String("pool", pool.Address.Hex()),
		zap.String("pool_id", pool.ID.Hex()),
		zap.String("total_supply", funding.FormatAmount(supply, funding.Decimals18)),
	)

	if floor := o.cfg.MinSharesOut; floor != nil && floor.Sign() > 0 && supply.Cmp(floor) < 0 {
		return supply, fmt.Errorf("%w: got %s, want at least %s", ErrSharesBelowMinimum,
			funding.FormatAmount(supply, funding.Decimals18), funding.FormatAmount(floor, funding.Decimals18))
	}
	return supply, nil
}
