package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SigningIdentity is the account submitting every transaction of a run.
type SigningIdentity struct {
	Address common.Address
}

// PriceQuote is a raw oracle answer with its fixed-point decimal count.
type PriceQuote struct {
	Answer   *big.Int
	Decimals uint8
}

// FundingPlan holds the per-token deposit, index-aligned with Tokens.
type FundingPlan struct {
	Tokens       []common.Address
	Amounts      []*big.Int
	MaxAmountsIn []*big.Int
}
