package funding

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolDeployer/internal/model"
)

const bpsDenominator = 10_000

// Price18 rescales an oracle answer to 18-decimal fixed point.
func Price18(quote model.PriceQuote) (*big.Int, error) {
	if quote.Answer == nil || quote.Answer.Sign() <= 0 {
		return nil, fmt.Errorf("oracle answer must be positive")
	}
	return Rescale(quote.Answer, quote.Decimals, Decimals18), nil
}

// ComputePlan sizes each token deposit so that its fiat value equals targetValue*weight.
//
// For token i: amount = targetValue * weight * 10^decimals / (price18 * 10^18), where price18 is
// the oracle price for PricingOracle tokens and 1e18 for PricingPeg tokens. All multiplications
// happen before the single division. The returned plan preserves the order of tokens.
func ComputePlan(tokens []model.TokenSpec, targetValue *big.Int, oraclePrice18 *big.Int) (model.FundingPlan, error) {
	if len(tokens) == 0 {
		return model.FundingPlan{}, fmt.Errorf("no tokens")
	}
	if targetValue == nil || targetValue.Sign() <= 0 {
		return model.FundingPlan{}, fmt.Errorf("target value must be positive")
	}

	plan := model.FundingPlan{
		Tokens:  make([]common.Address, 0, len(tokens)),
		Amounts: make([]*big.Int, 0, len(tokens)),
	}
	for _, token := range tokens {
		if token.Weight == nil || token.Weight.Sign() <= 0 {
			return model.FundingPlan{}, fmt.Errorf("token %s: weight must be positive", token.Address.Hex())
		}

		var price *big.Int
		switch token.Pricing {
		case model.PricingPeg:
			price = One
		case model.PricingOracle:
			if oraclePrice18 == nil || oraclePrice18.Sign() <= 0 {
				return model.FundingPlan{}, fmt.Errorf("token %s: oracle price required", token.Address.Hex())
			}
			price = oraclePrice18
		default:
			return model.FundingPlan{}, fmt.Errorf("token %s: unknown pricing mode %q", token.Address.Hex(), token.Pricing)
		}

		num := new(big.Int).Mul(targetValue, token.Weight)
		num.Mul(num, Pow10(token.Decimals))
		den := new(big.Int).Mul(price, One)
		amount := num.Quo(num, den)
		if amount.Sign() == 0 {
			return model.FundingPlan{}, fmt.Errorf("token %s: computed amount is zero", token.Address.Hex())
		}

		plan.Tokens = append(plan.Tokens, token.Address)
		plan.Amounts = append(plan.Amounts, amount)
	}

	plan.MaxAmountsIn = WithTolerance(plan.Amounts, 0)
	return plan, nil
}

// WithTolerance returns amounts raised by bps basis points, rounded up.
func WithTolerance(amounts []*big.Int, bps uint32) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, amount := range amounts {
		if bps == 0 {
			out[i] = new(big.Int).Set(amount)
			continue
		}
		scaled := new(big.Int).Mul(amount, big.NewInt(int64(bpsDenominator)+int64(bps)))
		scaled.Add(scaled, big.NewInt(bpsDenominator-1))
		out[i] = scaled.Quo(scaled, big.NewInt(bpsDenominator))
	}
	return out
}

// NeedsOracle reports whether any token needs an oracle price.
func NeedsOracle(tokens []model.TokenSpec) bool {
	for _, token := range tokens {
		if token.Pricing == model.PricingOracle {
			return true
		}
	}
	return false
}
