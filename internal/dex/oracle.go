package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNonPositiveAnswer is returned when the aggregator reports a zero or negative price.
var ErrNonPositiveAnswer = errors.New("oracle answer is not positive")

// LatestAnswer reads latestAnswer from a price aggregator.
func LatestAnswer(ctx context.Context, caller Caller, oracle common.Address) (*big.Int, error) {
	parsed, err := AggregatorABI()
	if err != nil {
		return nil, fmt.Errorf("parse aggregator abi: %w", err)
	}
	values, err := callMethod(ctx, caller, oracle, parsed, "latestAnswer")
	if err != nil {
		return nil, err
	}
	answer, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	if answer.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNonPositiveAnswer, answer.String())
	}
	return answer, nil
}

// OracleDecimals reads the aggregator's answer precision.
func OracleDecimals(ctx context.Context, caller Caller, oracle common.Address) (uint8, error) {
	parsed, err := AggregatorABI()
	if err != nil {
		return 0, fmt.Errorf("parse aggregator abi: %w", err)
	}
	values, err := callMethod(ctx, caller, oracle, parsed, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}
