package config

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolDeployer/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "log-level: debug\n"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "dev" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected network/log level: %q %q", cfg.Network, cfg.LogLevel)
	}
	if cfg.OracleDecimals != 8 || cfg.TargetValue != "50000" || cfg.SwapFee != "0.005" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ConfirmTimeout != 5*time.Minute || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Tokens, DefaultTokens()) {
		t.Fatalf("unexpected tokens: %+v", cfg.Tokens)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
network: local
target-value: "1000"
max-in-tolerance-bps: 50
tokens:
  - address: "0x1000000000000000000000000000000000000001"
    symbol: AAA
    decimals: 6
    weight: "0.5"
    pricing: peg
  - address: "0x2000000000000000000000000000000000000002"
    symbol: BBB
    decimals: 18
    weight: "0.5"
    pricing: oracle
    wrapped: true
networks:
  local:
    url: http://127.0.0.1:9545
    chain-id: 1337
    gas-price: "1000000000"
    accounts: [LOCAL_KEY]
`)
	t.Setenv("POOLDEPLOYER_TARGET_VALUE", "2500")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetValue != "2500" {
		t.Fatalf("env should override file, got %q", cfg.TargetValue)
	}
	if cfg.MaxInToleranceBps != 50 {
		t.Fatalf("tolerance: %d", cfg.MaxInToleranceBps)
	}
	if len(cfg.Tokens) != 2 || cfg.Tokens[0].Decimals != 6 || !cfg.Tokens[1].Wrapped {
		t.Fatalf("tokens: %+v", cfg.Tokens)
	}

	network, err := LookupNetwork(cfg.Network, cfg.Networks)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if network.URL != "http://127.0.0.1:9545" || network.ChainID != 1337 || network.GasPrice.Int64() != 1_000_000_000 {
		t.Fatalf("network: %+v", network)
	}
	if !reflect.DeepEqual(network.Accounts, []AccountRef{{Secret: "LOCAL_KEY"}}) {
		t.Fatalf("accounts: %+v", network.Accounts)
	}
}

func TestLookupNetwork(t *testing.T) {
	if _, err := LookupNetwork("goerli", nil); !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}

	mainnet, err := LookupNetwork("Mainnet", nil)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !mainnet.RealValue || mainnet.ChainID != 1 || mainnet.GasPrice.Cmp(gwei(150)) != 0 {
		t.Fatalf("mainnet: %+v", mainnet)
	}

	gasLimit := uint64(42)
	override, err := LookupNetwork("hardhat", map[string]NetworkConfig{"hardhat": {GasLimit: gasLimit}})
	if err != nil {
		t.Fatalf("lookup override: %v", err)
	}
	if override.GasLimit != gasLimit || override.ChainID != 31337 {
		t.Fatalf("override: %+v", override)
	}

	if _, err := LookupNetwork("x", map[string]NetworkConfig{"x": {GasPrice: "abc", URL: "http://x"}}); err == nil {
		t.Fatalf("expected invalid gas price error")
	}
}

func TestSecretsResolve(t *testing.T) {
	secrets := NewSecrets(map[string]string{"alchemyAPIKey": "abc"})

	value, err := secrets.Resolve("alchemyAPIKey", "", true)
	if err != nil || value != "abc" {
		t.Fatalf("resolve: %q %v", value, err)
	}
	if _, err := secrets.Resolve("missing", "", false); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := secrets.Resolve("missing", "0x01", true); !errors.Is(err, ErrFallbackOnRealNetwork) {
		t.Fatalf("expected ErrFallbackOnRealNetwork, got %v", err)
	}
	value, err = secrets.Resolve("missing", "0x01", false)
	if err != nil || value != "0x01" {
		t.Fatalf("fallback: %q %v", value, err)
	}
}

func TestLoadSecretsFileAndEnv(t *testing.T) {
	path := writeFile(t, "secrets.yaml", "DEPLOYER_PRIVATEKEY: \"0xfile\"\nalchemyAPIKey: key\n")
	t.Setenv("DEPLOYER_PRIVATEKEY", "0xenv")

	secrets, err := LoadSecrets(path)
	if err != nil {
		t.Fatalf("load secrets: %v", err)
	}
	if value, _ := secrets.Lookup("DEPLOYER_PRIVATEKEY"); value != "0xenv" {
		t.Fatalf("env should win, got %q", value)
	}
	if value, _ := secrets.Lookup("alchemyAPIKey"); value != "key" {
		t.Fatalf("file value, got %q", value)
	}

	empty, err := LoadSecrets(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should be empty: %v", err)
	}
	if _, ok := empty.Lookup("alchemyAPIKey"); ok {
		t.Fatalf("unexpected value")
	}
}

func TestNetworkResolve(t *testing.T) {
	networks := BuiltinNetworks()

	mainnet := networks["mainnet"]
	if _, err := mainnet.Resolve(NewSecrets(map[string]string{"alchemyAPIKey": "k"}), ""); !errors.Is(err, ErrFallbackOnRealNetwork) {
		t.Fatalf("expected ErrFallbackOnRealNetwork, got %v", err)
	}

	secrets := NewSecrets(map[string]string{
		"alchemyAPIKey":       "k",
		"DEPLOYER_PRIVATEKEY": "0xaaa",
		"ACCOUNT2_PRIVATEKEY": "0xbbb",
	})
	resolved, err := mainnet.Resolve(secrets, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.RPCURL != "https://eth-mainnet.alchemyapi.io/v2/k" {
		t.Fatalf("url: %s", resolved.RPCURL)
	}
	if !reflect.DeepEqual(resolved.PrivateKeys, []string{"0xaaa", "0xbbb"}) {
		t.Fatalf("keys: %v", resolved.PrivateKeys)
	}

	rinkeby := networks["rinkeby"]
	if _, err := rinkeby.Resolve(NewSecrets(nil), ""); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret for url placeholder, got %v", err)
	}
	overridden, err := rinkeby.Resolve(NewSecrets(nil), "http://localhost:8545")
	if err != nil || overridden.RPCURL != "http://localhost:8545" {
		t.Fatalf("rpc override: %+v %v", overridden, err)
	}
	if !reflect.DeepEqual(overridden.PrivateKeys, []string{devKey0}) {
		t.Fatalf("dev fallback: %v", overridden.PrivateKeys)
	}
}

func TestDeployConfig(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "min-shares-out: \"1.5\"\n"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	params, err := cfg.DeployConfig()
	if err != nil {
		t.Fatalf("deploy config: %v", err)
	}

	wantTokens := []common.Address{
		common.HexToAddress("0x5f98805A4E8be255a32880FDeC7F6728C6568bA0"),
		common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	}
	if !reflect.DeepEqual(params.Request.Tokens, wantTokens) {
		t.Fatalf("tokens: %v", params.Request.Tokens)
	}
	fourTenths, _ := new(big.Int).SetString("400000000000000000", 10)
	if params.Request.Weights[0].Cmp(fourTenths) != 0 {
		t.Fatalf("weight: %s", params.Request.Weights[0])
	}
	if params.Request.SwapFee.String() != "5000000000000000" {
		t.Fatalf("swap fee: %s", params.Request.SwapFee)
	}
	if params.Tokens[1].Pricing != model.PricingOracle || !params.Tokens[1].Wrapped {
		t.Fatalf("weth token: %+v", params.Tokens[1])
	}
	if params.MinSharesOut.String() != "1500000000000000000" {
		t.Fatalf("min shares: %s", params.MinSharesOut)
	}
}

func TestDeployConfigRejects(t *testing.T) {
	base := func() Config {
		cfg := Config{
			Vault:          "0xBA12222222228d8Ba445958a75a0704d566BF2C8",
			Factory:        "0xA5bf2ddF098bb0Ef6d120C98217dD6B141c74EE0",
			Oracle:         "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419",
			PoolName:       "pool",
			PoolSymbol:     "P",
			SwapFee:        "0.005",
			TargetValue:    "100",
			OracleDecimals: 8,
			Tokens:         DefaultTokens(),
		}
		return cfg
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad vault", func(c *Config) { c.Vault = "0x123" }},
		{"bad weight", func(c *Config) { c.Tokens[0].Weight = "abc" }},
		{"weights do not sum", func(c *Config) { c.Tokens[0].Weight = "0.3" }},
		{"unsorted tokens", func(c *Config) { c.Tokens[0], c.Tokens[1] = c.Tokens[1], c.Tokens[0] }},
		{"pricing", func(c *Config) { c.Tokens[0].Pricing = "twap" }},
		{"target precision", func(c *Config) { c.TargetValue = "0.0000000000000000001" }},
	}
	if _, err := base().DeployConfig(); err != nil {
		t.Fatalf("base config rejected: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if _, err := cfg.DeployConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
