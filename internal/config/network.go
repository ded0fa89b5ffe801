package config

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrUnknownNetwork is returned for a network name that is neither built in nor configured.
	ErrUnknownNetwork = errors.New("unknown network")
)

// Well-known local development keys (anvil/hardhat accounts #0 and #1). Never used on real-value networks.
const (
	devKey0 = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devKey1 = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// AccountRef names a secret holding a private key, with an optional development fallback.
type AccountRef struct {
	Secret   string
	Fallback string
}

// Network describes one deployment target.
type Network struct {
	Name string
	// URL may contain {secretKey} placeholders resolved from the secrets store.
	URL     string
	ChainID uint64
	// GasPrice forces legacy transactions when set.
	GasPrice  *big.Int
	GasLimit  uint64
	RealValue bool
	Accounts  []AccountRef
}

// NetworkConfig is the config-file form of a network entry.
type NetworkConfig struct {
	URL       string   `mapstructure:"url"`
	ChainID   uint64   `mapstructure:"chain-id"`
	GasPrice  string   `mapstructure:"gas-price"`
	GasLimit  uint64   `mapstructure:"gas-limit"`
	RealValue *bool    `mapstructure:"real-value"`
	Accounts  []string `mapstructure:"accounts"`
}

// ResolvedNetwork is a network with its secrets substituted.
type ResolvedNetwork struct {
	Name        string
	RPCURL      string
	ChainID     uint64
	GasPrice    *big.Int
	GasLimit    uint64
	RealValue   bool
	PrivateKeys []string
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

// BuiltinNetworks returns the default network registry.
func BuiltinNetworks() map[string]Network {
	devAccounts := []AccountRef{
		{Secret: "DEPLOYER_PRIVATEKEY", Fallback: devKey0},
		{Secret: "ACCOUNT2_PRIVATEKEY", Fallback: devKey1},
	}
	return map[string]Network{
		"hardhat": {
			Name:     "hardhat",
			URL:      "http://127.0.0.1:8545",
			ChainID:  31337,
			GasPrice: gwei(20),
			GasLimit: 10_000_000,
			Accounts: devAccounts,
		},
		"dev": {
			Name:     "dev",
			URL:      "http://localhost:8545",
			GasLimit: 100_000_000,
			Accounts: devAccounts,
		},
		"rinkeby": {
			Name:     "rinkeby",
			URL:      "https://eth-rinkeby.alchemyapi.io/v2/{alchemyAPIKeyRinkeby}",
			ChainID:  4,
			GasLimit: 10_000_000,
			Accounts: []AccountRef{{Secret: "RINKEBY_DEPLOYER_PRIVATEKEY", Fallback: devKey0}},
		},
		"mainnet": {
			Name:      "mainnet",
			URL:       "https://eth-mainnet.alchemyapi.io/v2/{alchemyAPIKey}",
			ChainID:   1,
			GasPrice:  gwei(150),
			RealValue: true,
			Accounts:  devAccounts,
		},
	}
}

// LookupNetwork merges config-file overrides into the builtin registry and returns name.
func LookupNetwork(name string, overrides map[string]NetworkConfig) (Network, error) {
	registry := BuiltinNetworks()
	for key, override := range overrides {
		key = strings.ToLower(strings.TrimSpace(key))
		merged, err := applyOverride(registry[key], key, override)
		if err != nil {
			return Network{}, fmt.Errorf("network %s: %w", key, err)
		}
		registry[key] = merged
	}

	network, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		known := make([]string, 0, len(registry))
		for key := range registry {
			known = append(known, key)
		}
		sort.Strings(known)
		return Network{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownNetwork, name, strings.Join(known, ", "))
	}
	return network, nil
}

func applyOverride(base Network, name string, override NetworkConfig) (Network, error) {
	base.Name = name
	if override.URL != "" {
		base.URL = override.URL
	}
	if override.ChainID != 0 {
		base.ChainID = override.ChainID
	}
	if override.GasPrice != "" {
		price, ok := new(big.Int).SetString(override.GasPrice, 10)
		if !ok || price.Sign() < 0 {
			return Network{}, fmt.Errorf("invalid gas-price %q", override.GasPrice)
		}
		base.GasPrice = price
	}
	if override.GasLimit != 0 {
		base.GasLimit = override.GasLimit
	}
	if override.RealValue != nil {
		base.RealValue = *override.RealValue
	}
	if len(override.Accounts) > 0 {
		accounts := make([]AccountRef, 0, len(override.Accounts))
		for _, secret := range cleanStrings(override.Accounts) {
			accounts = append(accounts, AccountRef{Secret: secret})
		}
		base.Accounts = accounts
	}
	if base.URL == "" {
		return Network{}, fmt.Errorf("url is required")
	}
	return base, nil
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Resolve substitutes URL placeholders and account keys. rpcOverride replaces the URL when set.
func (n Network) Resolve(secrets *Secrets, rpcOverride string) (ResolvedNetwork, error) {
	resolved := ResolvedNetwork{
		Name:      n.Name,
		ChainID:   n.ChainID,
		GasLimit:  n.GasLimit,
		RealValue: n.RealValue,
	}
	if n.GasPrice != nil {
		resolved.GasPrice = new(big.Int).Set(n.GasPrice)
	}

	for _, account := range n.Accounts {
		key, err := secrets.Resolve(account.Secret, account.Fallback, n.RealValue)
		if err != nil {
			return ResolvedNetwork{}, err
		}
		resolved.PrivateKeys = append(resolved.PrivateKeys, key)
	}

	if rpcOverride != "" {
		resolved.RPCURL = rpcOverride
		return resolved, nil
	}

	var resolveErr error
	resolved.RPCURL = placeholderPattern.ReplaceAllStringFunc(n.URL, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, err := secrets.Resolve(key, "", n.RealValue)
		if err != nil && resolveErr == nil {
			resolveErr = err
		}
		return value
	})
	if resolveErr != nil {
		return ResolvedNetwork{}, fmt.Errorf("rpc url: %w", resolveErr)
	}
	return resolved, nil
}
