package deploy

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolDeployer/internal/chain"
	"poolDeployer/internal/metrics"
	"poolDeployer/internal/model"
	"poolDeployer/internal/storage"
)

var (
	ErrNoSigner           = errors.New("no signing account available")
	ErrOracleDecimals     = errors.New("oracle decimals mismatch")
	ErrTokenDecimals      = errors.New("token decimals mismatch")
	ErrInsufficientToken  = errors.New("insufficient token balance")
	ErrInsufficientNative = errors.New("insufficient native balance to wrap shortfall")
	ErrSharesBelowMinimum = errors.New("pool share supply below minimum")
	ErrAlreadyDeployed    = errors.New("a pool was already created from this workspace")
)

// Stage names a pipeline step.
type Stage string

const (
	StageGuard       Stage = "guard"
	StageSigner      Stage = "resolve_signer"
	StageCreatePool  Stage = "create_pool"
	StageOraclePrice Stage = "oracle_price"
	StagePlan        Stage = "funding_plan"
	StageBalance     Stage = "ensure_balance"
	StageApprove     Stage = "approve"
	StageJoin        Stage = "join_pool"
	StageReport      Stage = "report"
)

// StageError reports which step failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config holds the deployment parameters.
type Config struct {
	Network string
	Vault   common.Address
	Factory common.Address
	Oracle  common.Address
	Request model.PoolCreationRequest
	// Tokens must list the same addresses as Request.Tokens, in the same order.
	Tokens []model.TokenSpec
	// TargetValue is the total fiat value of the initial deposit, 18 decimals.
	TargetValue       *big.Int
	OracleDecimals    uint8
	MaxInToleranceBps uint32
	// MinSharesOut is checked against the pool supply after the join. Zero disables the check.
	MinSharesOut *big.Int
}

// Validate checks the parameters before any RPC is made.
func (c Config) Validate() error {
	if c.Vault == (common.Address{}) {
		return fmt.Errorf("vault address is required")
	}
	if c.Factory == (common.Address{}) {
		return fmt.Errorf("factory address is required")
	}
	if err := c.Request.Validate(); err != nil {
		return fmt.Errorf("pool request: %w", err)
	}
	if len(c.Tokens) != len(c.Request.Tokens) {
		return fmt.Errorf("token specs/request tokens length mismatch: %d != %d", len(c.Tokens), len(c.Request.Tokens))
	}
	for i, token := range c.Tokens {
		if token.Address != c.Request.Tokens[i] {
			return fmt.Errorf("token %d: %s does not match request token %s", i, token.Address.Hex(), c.Request.Tokens[i].Hex())
		}
		if token.Weight == nil || token.Weight.Cmp(c.Request.Weights[i]) != 0 {
			return fmt.Errorf("token %d: weight does not match request weight", i)
		}
		if token.Pricing == model.PricingOracle && c.Oracle == (common.Address{}) {
			return fmt.Errorf("token %d: oracle pricing requires an oracle address", i)
		}
	}
	if c.TargetValue == nil || c.TargetValue.Sign() <= 0 {
		return fmt.Errorf("target value must be positive")
	}
	if c.MaxInToleranceBps > 10_000 {
		return fmt.Errorf("max-in tolerance must be at most 10000 bps")
	}
	return nil
}

// Env is the execution context threaded through every step.
type Env struct {
	Backend  chain.Backend
	Config   Config
	Logger   *zap.Logger
	Recorder storage.Recorder
	Metrics  *metrics.Recorder
	Guard    *Guard
	Now      func() time.Time
}

// Result summarizes a successful run.
type Result struct {
	RunID       string
	Signer      model.SigningIdentity
	Pool        model.PoolIdentifier
	Quote       *model.PriceQuote
	Plan        model.FundingPlan
	JoinStatus  uint64
	TotalSupply *big.Int
}
