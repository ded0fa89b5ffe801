package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PricingMode selects the reference price used to size a token deposit.
type PricingMode string

const (
	// PricingPeg prices the token 1:1 against the target fiat value.
	PricingPeg PricingMode = "peg"
	// PricingOracle prices the token with the oracle answer.
	PricingOracle PricingMode = "oracle"
)

// TokenSpec describes one pool token.
type TokenSpec struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
	Weight   *big.Int
	Pricing  PricingMode
	// Wrapped marks a wrapped-native token whose shortfall can be covered by deposit().
	Wrapped bool
}
