package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolID reads getPoolId from a weighted pool.
func PoolID(ctx context.Context, caller Caller, pool common.Address) (common.Hash, error) {
	parsed, err := PoolABI()
	if err != nil {
		return common.Hash{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, caller, pool, parsed, "getPoolId")
	if err != nil {
		return common.Hash{}, err
	}
	return asBytes32(values[0])
}

// TotalSupply reads the pool's minted liquidity share supply.
func TotalSupply(ctx context.Context, caller Caller, pool common.Address) (*big.Int, error) {
	parsed, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, caller, pool, parsed, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}
