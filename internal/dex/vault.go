package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// JoinKindInit is the weighted pool join kind for the first deposit.
const JoinKindInit = 0

// JoinPoolRequest mirrors IVault.JoinPoolRequest.
type JoinPoolRequest struct {
	Assets              []common.Address
	MaxAmountsIn        []*big.Int
	UserData            []byte
	FromInternalBalance bool
}

var initJoinArgs = abi.Arguments{
	{Type: mustType("uint256")},
	{Type: mustType("uint256[]")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", t, err))
	}
	return typ
}

// EncodeInitJoin builds the userData payload abi.encode(uint256 kind, uint256[] balances).
func EncodeInitJoin(balances []*big.Int) ([]byte, error) {
	data, err := initJoinArgs.Pack(big.NewInt(JoinKindInit), balances)
	if err != nil {
		return nil, fmt.Errorf("encode init join: %w", err)
	}
	return data, nil
}

// DecodeInitJoin reverses EncodeInitJoin.
func DecodeInitJoin(data []byte) (uint64, []*big.Int, error) {
	values, err := initJoinArgs.Unpack(data)
	if err != nil {
		return 0, nil, fmt.Errorf("decode init join: %w", err)
	}
	kind, err := asBigInt(values[0])
	if err != nil {
		return 0, nil, err
	}
	balances, ok := values[1].([]*big.Int)
	if !ok {
		return 0, nil, fmt.Errorf("unexpected balances type %T", values[1])
	}
	return kind.Uint64(), balances, nil
}

// PackJoinPool encodes the vault joinPool call.
func PackJoinPool(poolID common.Hash, sender, recipient common.Address, req JoinPoolRequest) ([]byte, error) {
	if len(req.Assets) != len(req.MaxAmountsIn) {
		return nil, fmt.Errorf("assets/maxAmountsIn length mismatch: %d != %d", len(req.Assets), len(req.MaxAmountsIn))
	}
	parsed, err := VaultABI()
	if err != nil {
		return nil, fmt.Errorf("parse vault abi: %w", err)
	}
	data, err := parsed.Pack("joinPool", [32]byte(poolID), sender, recipient, req)
	if err != nil {
		return nil, fmt.Errorf("pack joinPool: %w", err)
	}
	return data, nil
}
