package model

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func validRequest() PoolCreationRequest {
	return PoolCreationRequest{
		Name:   "WETH/LUSD Pool",
		Symbol: "60WETH-40LUSD",
		Tokens: []common.Address{
			common.HexToAddress("0x5f98805A4E8be255a32880FDeC7F6728C6568bA0"),
			common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		},
		Weights: []*big.Int{
			new(big.Int).Mul(big.NewInt(4), big.NewInt(1e17)),
			new(big.Int).Mul(big.NewInt(6), big.NewInt(1e17)),
		},
		SwapFee:       big.NewInt(5e15),
		OracleEnabled: true,
	}
}

func TestPoolCreationRequestValidate(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPoolCreationRequestUnsortedTokens(t *testing.T) {
	req := validRequest()
	req.Tokens[0], req.Tokens[1] = req.Tokens[1], req.Tokens[0]
	if err := req.Validate(); err == nil {
		t.Fatalf("expected error for unsorted tokens")
	}
}

func TestPoolCreationRequestWeightSum(t *testing.T) {
	req := validRequest()
	req.Weights[1] = big.NewInt(5e17)
	if err := req.Validate(); err == nil {
		t.Fatalf("expected error for weights not summing to one")
	}
}

func TestPoolCreationRequestLengthMismatch(t *testing.T) {
	req := validRequest()
	req.Weights = req.Weights[:1]
	if err := req.Validate(); err == nil {
		t.Fatalf("expected error for length mismatch")
	}
}

func TestPoolCreationRequestSwapFeeBounds(t *testing.T) {
	req := validRequest()
	req.SwapFee = big.NewInt(0)
	if err := req.Validate(); err == nil {
		t.Fatalf("expected error for zero swap fee")
	}
	req.SwapFee = new(big.Int).Set(weightOne)
	if err := req.Validate(); err == nil {
		t.Fatalf("expected error for swap fee of 100%%")
	}
}
