package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"poolDeployer/internal/deploy"
	"poolDeployer/internal/funding"
	"poolDeployer/internal/model"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(field, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, input)
	}
	return common.HexToAddress(input), nil
}

func parseOptionalAddress(field, input string) (common.Address, error) {
	if strings.TrimSpace(input) == "" {
		return common.Address{}, nil
	}
	return ParseAddress(field, input)
}

// ParseTokens converts token entries into specs, keeping their order.
func ParseTokens(entries []TokenConfig) ([]model.TokenSpec, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("tokens: at least one token is required")
	}
	tokens := make([]model.TokenSpec, 0, len(entries))
	for i, entry := range entries {
		addr, err := ParseAddress(fmt.Sprintf("tokens[%d].address", i), entry.Address)
		if err != nil {
			return nil, err
		}
		weight, err := funding.ParseFixed(entry.Weight, funding.Decimals18)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d].weight: %w", i, err)
		}
		pricing := model.PricingMode(strings.ToLower(strings.TrimSpace(entry.Pricing)))
		switch pricing {
		case model.PricingPeg, model.PricingOracle:
		case "":
			pricing = model.PricingPeg
		default:
			return nil, fmt.Errorf("tokens[%d].pricing: unknown mode %q", i, entry.Pricing)
		}
		symbol := strings.TrimSpace(entry.Symbol)
		if symbol == "" {
			symbol = addr.Hex()
		}
		tokens = append(tokens, model.TokenSpec{
			Address:  addr,
			Symbol:   symbol,
			Decimals: entry.Decimals,
			Weight:   weight,
			Pricing:  pricing,
			Wrapped:  entry.Wrapped,
		})
	}
	return tokens, nil
}

// DeployConfig converts the loaded values into orchestrator parameters.
func (c Config) DeployConfig() (deploy.Config, error) {
	vault, err := ParseAddress("vault", c.Vault)
	if err != nil {
		return deploy.Config{}, err
	}
	factory, err := ParseAddress("factory", c.Factory)
	if err != nil {
		return deploy.Config{}, err
	}
	oracle, err := parseOptionalAddress("oracle", c.Oracle)
	if err != nil {
		return deploy.Config{}, err
	}
	owner, err := parseOptionalAddress("owner", c.Owner)
	if err != nil {
		return deploy.Config{}, err
	}

	tokens, err := ParseTokens(c.Tokens)
	if err != nil {
		return deploy.Config{}, err
	}
	swapFee, err := funding.ParseFixed(c.SwapFee, funding.Decimals18)
	if err != nil {
		return deploy.Config{}, fmt.Errorf("swap-fee: %w", err)
	}
	target, err := funding.ParseFixed(c.TargetValue, funding.Decimals18)
	if err != nil {
		return deploy.Config{}, fmt.Errorf("target-value: %w", err)
	}
	minShares := new(big.Int)
	if strings.TrimSpace(c.MinSharesOut) != "" {
		if minShares, err = funding.ParseFixed(c.MinSharesOut, funding.Decimals18); err != nil {
			return deploy.Config{}, fmt.Errorf("min-shares-out: %w", err)
		}
	}

	req := model.PoolCreationRequest{
		Name:          c.PoolName,
		Symbol:        c.PoolSymbol,
		Tokens:        make([]common.Address, 0, len(tokens)),
		Weights:       make([]*big.Int, 0, len(tokens)),
		SwapFee:       swapFee,
		OracleEnabled: c.OracleEnabled,
		Owner:         owner,
	}
	for _, token := range tokens {
		req.Tokens = append(req.Tokens, token.Address)
		req.Weights = append(req.Weights, token.Weight)
	}

	cfg := deploy.Config{
		Network:           c.Network,
		Vault:             vault,
		Factory:           factory,
		Oracle:            oracle,
		Request:           req,
		Tokens:            tokens,
		TargetValue:       target,
		OracleDecimals:    c.OracleDecimals,
		MaxInToleranceBps: c.MaxInToleranceBps,
		MinSharesOut:      minShares,
	}
	if err := cfg.Validate(); err != nil {
		return deploy.Config{}, err
	}
	return cfg, nil
}
