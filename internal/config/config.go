package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// TokenConfig is the config-file form of a pool token.
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
	Weight   string `mapstructure:"weight"`
	Pricing  string `mapstructure:"pricing"`
	Wrapped  bool   `mapstructure:"wrapped"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Network           string
	RPCURL            string
	SecretsFile       string
	Networks          map[string]NetworkConfig
	Vault             string
	Factory           string
	Oracle            string
	Owner             string
	PoolName          string
	PoolSymbol        string
	SwapFee           string
	OracleEnabled     bool
	Tokens            []TokenConfig
	TargetValue       string
	OracleDecimals    uint8
	MaxInToleranceBps uint32
	MinSharesOut      string
	ConfirmTimeout    time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	Journal           string
	Guard             string
	Force             bool
	PGDSN             string
	Pushgateway       string
	LogLevel          string
}

// DefaultTokens is the 40/60 LUSD/WETH pool.
func DefaultTokens() []TokenConfig {
	return []TokenConfig{
		{
			Address:  "0x5f98805A4E8be255a32880FDeC7F6728C6568bA0",
			Symbol:   "LUSD",
			Decimals: 18,
			Weight:   "0.4",
			Pricing:  "peg",
		},
		{
			Address:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			Symbol:   "WETH",
			Decimals: 18,
			Weight:   "0.6",
			Pricing:  "oracle",
			Wrapped:  true,
		},
	}
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLDEPLOYER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "dev")
	v.SetDefault("secrets", "./secrets.yaml")
	v.SetDefault("vault", "0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	v.SetDefault("factory", "0xA5bf2ddF098bb0Ef6d120C98217dD6B141c74EE0")
	v.SetDefault("oracle", "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")
	v.SetDefault("owner", "0xBA1BA1ba1BA1bA1bA1Ba1BA1ba1BA1bA1ba1ba1B")
	v.SetDefault("pool-name", "WETH/LUSD Pool")
	v.SetDefault("pool-symbol", "60WETH-40LUSD")
	v.SetDefault("swap-fee", "0.005")
	v.SetDefault("oracle-enabled", true)
	v.SetDefault("target-value", "50000")
	v.SetDefault("oracle-decimals", 8)
	v.SetDefault("max-in-tolerance-bps", 0)
	v.SetDefault("min-shares-out", "0")
	v.SetDefault("confirm-timeout", 5*time.Minute)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("journal", "./data/deployments.jsonl")
	v.SetDefault("guard", "./data/deployed.json")
	v.SetDefault("force", false)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if v.GetUint("oracle-decimals") > 77 {
		return Config{}, fmt.Errorf("oracle-decimals out of range: %d", v.GetUint("oracle-decimals"))
	}

	cfg := Config{
		Network:           strings.ToLower(strings.TrimSpace(v.GetString("network"))),
		RPCURL:            v.GetString("rpc"),
		SecretsFile:       v.GetString("secrets"),
		Vault:             v.GetString("vault"),
		Factory:           v.GetString("factory"),
		Oracle:            v.GetString("oracle"),
		Owner:             v.GetString("owner"),
		PoolName:          v.GetString("pool-name"),
		PoolSymbol:        v.GetString("pool-symbol"),
		SwapFee:           v.GetString("swap-fee"),
		OracleEnabled:     v.GetBool("oracle-enabled"),
		TargetValue:       v.GetString("target-value"),
		OracleDecimals:    uint8(v.GetUint("oracle-decimals")),
		MaxInToleranceBps: v.GetUint32("max-in-tolerance-bps"),
		MinSharesOut:      v.GetString("min-shares-out"),
		ConfirmTimeout:    v.GetDuration("confirm-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Journal:           v.GetString("journal"),
		Guard:             v.GetString("guard"),
		Force:             v.GetBool("force"),
		PGDSN:             v.GetString("pg-dsn"),
		Pushgateway:       v.GetString("pushgateway"),
		LogLevel:          v.GetString("log-level"),
	}

	if v.IsSet("tokens") {
		if err := v.UnmarshalKey("tokens", &cfg.Tokens); err != nil {
			return Config{}, fmt.Errorf("parse tokens: %w", err)
		}
	} else {
		cfg.Tokens = DefaultTokens()
	}

	if v.IsSet("networks") {
		if err := v.UnmarshalKey("networks", &cfg.Networks); err != nil {
			return Config{}, fmt.Errorf("parse networks: %w", err)
		}
	}

	return cfg, nil
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
