package dex

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolDeployer/internal/model"
)

// ErrPoolCreatedMissing is returned when a factory receipt carries no PoolCreated event.
var ErrPoolCreatedMissing = errors.New("PoolCreated event not found in receipt")

// PackCreate encodes the factory create call for req.
func PackCreate(req model.PoolCreationRequest) ([]byte, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	data, err := parsed.Pack("create",
		req.Name,
		req.Symbol,
		req.Tokens,
		req.Weights,
		req.SwapFee,
		req.OracleEnabled,
		req.Owner,
	)
	if err != nil {
		return nil, fmt.Errorf("pack create: %w", err)
	}
	return data, nil
}

// ParsePoolCreated scans a factory receipt for the PoolCreated event emitted by factory
// and returns the new pool address.
func ParsePoolCreated(receipt *types.Receipt, factory common.Address) (common.Address, error) {
	if receipt == nil {
		return common.Address{}, fmt.Errorf("receipt is nil")
	}
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	eventID := parsed.Events["PoolCreated"].ID

	for _, log := range receipt.Logs {
		if log == nil || log.Address != factory {
			continue
		}
		if len(log.Topics) < 2 || log.Topics[0] != eventID {
			continue
		}
		pool := common.BytesToAddress(log.Topics[1].Bytes())
		if pool == (common.Address{}) {
			return common.Address{}, fmt.Errorf("PoolCreated carries zero pool address")
		}
		return pool, nil
	}
	return common.Address{}, fmt.Errorf("%w (tx %s)", ErrPoolCreatedMissing, receipt.TxHash.Hex())
}
