package funding

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolDeployer/internal/model"
)

var (
	lusd = common.HexToAddress("0x5f98805A4E8be255a32880FDeC7F6728C6568bA0")
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func mustFixed(t *testing.T, input string, decimals uint8) *big.Int {
	t.Helper()
	v, err := ParseFixed(input, decimals)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return v
}

func defaultTokens(t *testing.T) []model.TokenSpec {
	return []model.TokenSpec{
		{Address: lusd, Symbol: "LUSD", Decimals: 18, Weight: mustFixed(t, "0.4", 18), Pricing: model.PricingPeg},
		{Address: weth, Symbol: "WETH", Decimals: 18, Weight: mustFixed(t, "0.6", 18), Pricing: model.PricingOracle, Wrapped: true},
	}
}

func TestComputePlanMatchesReferenceDeployment(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	price, err := Price18(model.PriceQuote{Answer: big.NewInt(250000000000), Decimals: 8})
	if err != nil {
		t.Fatalf("price: %v", err)
	}

	plan, err := ComputePlan(defaultTokens(t), target, price)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	// 50k * 0.4 = 20000 LUSD; 50k * 0.6 / 2500 = 12 WETH.
	want := []*big.Int{mustFixed(t, "20000", 18), mustFixed(t, "12", 18)}
	if !reflect.DeepEqual(plan.Amounts, want) {
		t.Fatalf("amounts mismatch: %v != %v", plan.Amounts, want)
	}
	if !reflect.DeepEqual(plan.Tokens, []common.Address{lusd, weth}) {
		t.Fatalf("token order mismatch: %v", plan.Tokens)
	}
	if !reflect.DeepEqual(plan.MaxAmountsIn, plan.Amounts) {
		t.Fatalf("max amounts should equal amounts without tolerance")
	}
}

func TestComputePlanPreservesWeightRatio(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	price := mustFixed(t, "1873.41592653", 18)
	tokens := defaultTokens(t)

	plan, err := ComputePlan(tokens, target, price)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	// Fiat value of each leg must equal target*weight within one unit of rounding on the priced leg.
	valueA := new(big.Int).Set(plan.Amounts[0])
	valueB := new(big.Int).Mul(plan.Amounts[1], price)
	valueB.Quo(valueB, One)

	wantA := new(big.Int).Mul(target, tokens[0].Weight)
	wantA.Quo(wantA, One)
	wantB := new(big.Int).Mul(target, tokens[1].Weight)
	wantB.Quo(wantB, One)

	if valueA.Cmp(wantA) != 0 {
		t.Fatalf("pegged leg value %s != %s", valueA, wantA)
	}
	diff := new(big.Int).Sub(wantB, valueB)
	tolerance := new(big.Int).Quo(price, One)
	tolerance.Add(tolerance, big.NewInt(1))
	if diff.Sign() < 0 || diff.Cmp(tolerance) > 0 {
		t.Fatalf("priced leg value %s deviates from %s by %s", valueB, wantB, diff)
	}
}

func TestComputePlanReorderedTokens(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	price := mustFixed(t, "2500", 18)
	tokens := defaultTokens(t)

	plan, err := ComputePlan(tokens, target, price)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	reversed := []model.TokenSpec{tokens[1], tokens[0]}
	planReversed, err := ComputePlan(reversed, target, price)
	if err != nil {
		t.Fatalf("plan reversed: %v", err)
	}

	if planReversed.Tokens[0] != weth || planReversed.Tokens[1] != lusd {
		t.Fatalf("reversed token order mismatch: %v", planReversed.Tokens)
	}
	if planReversed.Amounts[0].Cmp(plan.Amounts[1]) != 0 || planReversed.Amounts[1].Cmp(plan.Amounts[0]) != 0 {
		t.Fatalf("reversed amounts not aligned: %v vs %v", planReversed.Amounts, plan.Amounts)
	}
}

func TestComputePlanDeterministic(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	price := mustFixed(t, "3141.5926", 18)

	first, err := ComputePlan(defaultTokens(t), target, price)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	second, err := ComputePlan(defaultTokens(t), target, price)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ: %+v != %+v", first, second)
	}
}

func TestComputePlanTokenDecimals(t *testing.T) {
	target := mustFixed(t, "1000", 18)
	tokens := []model.TokenSpec{
		{Address: usdc, Symbol: "USDC", Decimals: 6, Weight: mustFixed(t, "0.5", 18), Pricing: model.PricingPeg},
		{Address: weth, Symbol: "WETH", Decimals: 18, Weight: mustFixed(t, "0.5", 18), Pricing: model.PricingOracle},
	}

	plan, err := ComputePlan(tokens, target, mustFixed(t, "2000", 18))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Amounts[0].String() != "500000000" {
		t.Fatalf("usdc amount: %s", plan.Amounts[0])
	}
	if plan.Amounts[1].Cmp(mustFixed(t, "0.25", 18)) != 0 {
		t.Fatalf("weth amount: %s", plan.Amounts[1])
	}
}

func TestComputePlanOracleDecimalsParameterized(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	eight, err := Price18(model.PriceQuote{Answer: big.NewInt(250000000000), Decimals: 8})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	eighteen, err := Price18(model.PriceQuote{Answer: mustFixed(t, "2500", 18), Decimals: 18})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if eight.Cmp(eighteen) != 0 {
		t.Fatalf("rescaled prices differ: %s != %s", eight, eighteen)
	}

	a, _ := ComputePlan(defaultTokens(t), target, eight)
	b, _ := ComputePlan(defaultTokens(t), target, eighteen)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("plans differ for equivalent quotes")
	}
}

func TestComputePlanErrors(t *testing.T) {
	target := mustFixed(t, "50000", 18)
	if _, err := ComputePlan(defaultTokens(t), target, nil); err == nil {
		t.Fatalf("expected error without oracle price")
	}
	if _, err := ComputePlan(defaultTokens(t), big.NewInt(0), One); err == nil {
		t.Fatalf("expected error for zero target")
	}
	bad := defaultTokens(t)
	bad[0].Pricing = "twap"
	if _, err := ComputePlan(bad, target, One); err == nil {
		t.Fatalf("expected error for unknown pricing")
	}
	if _, err := Price18(model.PriceQuote{Answer: big.NewInt(-1), Decimals: 8}); err == nil {
		t.Fatalf("expected error for negative answer")
	}
}

func TestWithTolerance(t *testing.T) {
	amounts := []*big.Int{big.NewInt(10000), big.NewInt(3)}
	got := WithTolerance(amounts, 50)
	if got[0].String() != "10050" {
		t.Fatalf("tolerance: %s", got[0])
	}
	// 3 * 1.005 = 3.015, rounded up.
	if got[1].String() != "4" {
		t.Fatalf("tolerance round up: %s", got[1])
	}
	if got[0] == amounts[0] {
		t.Fatalf("tolerance must not alias inputs")
	}
}
