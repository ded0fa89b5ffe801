package model

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// weightOne is 1.0 in 18-decimal fixed point.
var weightOne = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// PoolCreationRequest carries the parameters for a new weighted pool.
// Tokens and Weights are index-aligned.
type PoolCreationRequest struct {
	Name          string
	Symbol        string
	Tokens        []common.Address
	Weights       []*big.Int
	SwapFee       *big.Int
	OracleEnabled bool
	Owner         common.Address
}

// Validate checks the request before it is sent to the factory.
func (r PoolCreationRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("pool name is required")
	}
	if r.Symbol == "" {
		return fmt.Errorf("pool symbol is required")
	}
	if len(r.Tokens) < 2 {
		return fmt.Errorf("at least two tokens are required, got %d", len(r.Tokens))
	}
	if len(r.Tokens) != len(r.Weights) {
		return fmt.Errorf("token/weight length mismatch: %d != %d", len(r.Tokens), len(r.Weights))
	}

	// The vault registers pool tokens in ascending address order.
	for i := 1; i < len(r.Tokens); i++ {
		if bytes.Compare(r.Tokens[i-1].Bytes(), r.Tokens[i].Bytes()) >= 0 {
			return fmt.Errorf("tokens must be sorted ascending and unique: %s >= %s", r.Tokens[i-1].Hex(), r.Tokens[i].Hex())
		}
	}

	sum := new(big.Int)
	for i, w := range r.Weights {
		if w == nil || w.Sign() <= 0 {
			return fmt.Errorf("weight %d must be positive", i)
		}
		sum.Add(sum, w)
	}
	if sum.Cmp(weightOne) != 0 {
		return fmt.Errorf("weights must sum to 1e18, got %s", sum.String())
	}

	if r.SwapFee == nil || r.SwapFee.Sign() <= 0 || r.SwapFee.Cmp(weightOne) >= 0 {
		return fmt.Errorf("swap fee must be in (0, 1e18)")
	}
	return nil
}

// PoolIdentifier references a pool created by the factory.
type PoolIdentifier struct {
	Address common.Address
	ID      common.Hash
}
