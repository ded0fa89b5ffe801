package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

var (
	// ErrTxReverted is returned when a mined transaction has a failure status.
	ErrTxReverted = errors.New("transaction reverted")
	// ErrConfirmTimeout is returned when a transaction is not mined within the confirmation timeout.
	ErrConfirmTimeout = errors.New("timed out waiting for confirmation")
	// ErrChainIDMismatch is returned when the RPC endpoint serves a different chain than configured.
	ErrChainIDMismatch = errors.New("chain id mismatch")
)

// PendingTxError is returned for a broadcast transaction whose receipt was not obtained.
// The transaction may still be mined.
type PendingTxError struct {
	Hash common.Hash
	Err  error
}

func (e *PendingTxError) Error() string {
	return fmt.Sprintf("tx %s pending: %v", e.Hash.Hex(), e.Err)
}

func (e *PendingTxError) Unwrap() error {
	return e.Err
}

// Options controls transaction submission.
type Options struct {
	// GasPrice forces legacy transactions at a fixed price. Nil means EIP-1559 fees.
	GasPrice *big.Int
	// GasLimit overrides gas estimation when non-zero.
	GasLimit       uint64
	ConfirmTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// TxRequest is a state-changing call submitted from one of the keyring accounts.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Backend is the chain surface the deployment pipeline depends on.
type Backend interface {
	Accounts() []common.Address
	ChainID() *big.Int
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	Transact(ctx context.Context, req TxRequest) (*types.Receipt, error)
}

// Client wraps go-ethereum RPC, signs with a local keyring and waits for receipts.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	keyring   *Keyring
	chainID   *big.Int
	opts      Options
	logger    *zap.Logger
}

var _ Backend = (*Client)(nil)

// NewClient dials rpcURL and reads the chain id.
func NewClient(ctx context.Context, rpcURL string, keyring *Keyring, opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keyring == nil {
		keyring = &Keyring{}
	}

	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		keyring:   keyring,
		opts:      opts,
		logger:    logger,
	}

	_, err = newReadPolicy(opts).do(ctx, func(ctx context.Context) error {
		var err error
		c.chainID, err = c.ethClient.ChainID(ctx)
		return err
	})
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	return c, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the chain ID reported by the endpoint.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// VerifyChainID fails when expected is non-zero and differs from the endpoint's chain id.
func (c *Client) VerifyChainID(expected uint64) error {
	if expected == 0 {
		return nil
	}
	if !c.chainID.IsUint64() || c.chainID.Uint64() != expected {
		return fmt.Errorf("%w: expected %d, got %s", ErrChainIDMismatch, expected, c.chainID)
	}
	return nil
}

// Accounts returns the keyring addresses in configuration order.
func (c *Client) Accounts() []common.Address {
	return c.keyring.Addresses()
}

// Call performs an eth_call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out []byte
	_, err := newReadPolicy(c.opts).do(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		if err != nil {
			c.logger.Warn("eth_call failed", zap.String("to", to.Hex()), zap.Bool("revert", isRevert(err)), zap.Error(err))
		}
		return err
	})
	return out, err
}

// NativeBalance returns the account's native currency balance.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var bal *big.Int
	_, err := newReadPolicy(c.opts).do(ctx, func(ctx context.Context) error {
		var err error
		bal, err = c.ethClient.BalanceAt(ctx, account, nil)
		return err
	})
	return bal, err
}

// Transact signs, sends and waits for req to be mined. It is never retried. Once the
// transaction is broadcast, a missing receipt is reported as *PendingTxError.
func (c *Client) Transact(ctx context.Context, req TxRequest) (*types.Receipt, error) {
	key, ok := c.keyring.Key(req.From)
	if !ok {
		return nil, fmt.Errorf("no key for account %s", req.From.Hex())
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := c.ethClient.PendingNonceAt(ctx, req.From)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasLimit := c.opts.GasLimit
	if gasLimit == 0 {
		estimate, err := c.ethClient.EstimateGas(ctx, ethereum.CallMsg{
			From:  req.From,
			To:    &req.To,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
		gasLimit = estimate * 120 / 100
	}

	txData, err := c.buildTxData(ctx, nonce, gasLimit, req.To, value, req.Data)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignNewTx(key, types.LatestSignerForChainID(c.chainID), txData)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := c.ethClient.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	c.logger.Info("tx submitted",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", req.To.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit),
	)

	waitCtx := ctx
	if c.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.opts.ConfirmTimeout)
		defer cancel()
	}
	receipt, err := bind.WaitMined(waitCtx, c.ethClient, signed)
	if err != nil {
		if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrConfirmTimeout, c.opts.ConfirmTimeout)
		} else {
			err = fmt.Errorf("wait for receipt: %w", err)
		}
		return nil, &PendingTxError{Hash: signed.Hash(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: tx %s", ErrTxReverted, signed.Hash().Hex())
	}
	return receipt, nil
}

func (c *Client) buildTxData(ctx context.Context, nonce, gasLimit uint64, to common.Address, value *big.Int, data []byte) (types.TxData, error) {
	if c.opts.GasPrice != nil && c.opts.GasPrice.Sign() > 0 {
		return &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: c.opts.GasPrice,
			Gas:      gasLimit,
			To:       &to,
			Value:    value,
			Data:     data,
		}, nil
	}

	head, err := c.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get head: %w", err)
	}
	if head.BaseFee == nil {
		gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
		return &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			To:       &to,
			Value:    value,
			Data:     data,
		}, nil
	}

	tip, err := c.ethClient.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tip)

	return &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	}, nil
}
