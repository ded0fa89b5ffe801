package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pooldeployer",
		Short:        "Weighted pool deployment orchestrator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create, fund and initialize a weighted pool",
		RunE:  runDeploy,
	}
	addNetworkFlags(deployCmd)
	addPoolFlags(deployCmd)
	deployCmd.Flags().Duration("confirm-timeout", 5*time.Minute, "maximum wait for a transaction receipt")
	deployCmd.Flags().String("journal", "./data/deployments.jsonl", "deployment journal JSONL path")
	deployCmd.Flags().String("guard", "./data/deployed.json", "marker file written after pool creation (empty disables)")
	deployCmd.Flags().Bool("force", false, "deploy even when a marker file exists")
	deployCmd.Flags().String("pg-dsn", "", "Postgres DSN for deployment records")
	deployCmd.Flags().String("pushgateway", "", "Prometheus pushgateway URL")
	root.AddCommand(deployCmd)

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the funding plan without sending transactions",
		RunE:  runPlan,
	}
	addNetworkFlags(planCmd)
	addPoolFlags(planCmd)
	root.AddCommand(planCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show pool id and share supply of a deployed pool",
		RunE:  runStatus,
	}
	addNetworkFlags(statusCmd)
	statusCmd.Flags().String("pool", "", "pool address (defaults to the last recorded deployment)")
	statusCmd.Flags().String("guard", "./data/deployed.json", "marker file to read the pool address from")
	statusCmd.Flags().String("pg-dsn", "", "Postgres DSN to read the latest deployment from")
	root.AddCommand(statusCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema for deployment records",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN (postgres://...)")
	migrateCmd.Flags().Int("down", 0, "roll back this many versions instead of migrating up")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().String("network", "dev", "target network (hardhat, dev, rinkeby, mainnet or a configured one)")
	cmd.Flags().String("rpc", "", "RPC URL override")
	cmd.Flags().String("secrets", "./secrets.yaml", "secrets YAML file")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for reads")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("vault", "0xBA12222222228d8Ba445958a75a0704d566BF2C8", "vault address")
	cmd.Flags().String("factory", "0xA5bf2ddF098bb0Ef6d120C98217dD6B141c74EE0", "weighted pool factory address")
	cmd.Flags().String("oracle", "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419", "price aggregator address")
	cmd.Flags().String("owner", "0xBA1BA1ba1BA1bA1bA1Ba1BA1ba1BA1bA1ba1ba1B", "pool owner")
	cmd.Flags().String("pool-name", "WETH/LUSD Pool", "pool token name")
	cmd.Flags().String("pool-symbol", "60WETH-40LUSD", "pool token symbol")
	cmd.Flags().String("swap-fee", "0.005", "swap fee as a fraction")
	cmd.Flags().Bool("oracle-enabled", true, "enable the pool price oracle")
	cmd.Flags().String("target-value", "50000", "total fiat value of the initial deposit")
	cmd.Flags().Uint8("oracle-decimals", 8, "decimals of the price aggregator answer")
	cmd.Flags().Uint32("max-in-tolerance-bps", 0, "headroom over planned amounts for maxAmountsIn and approvals")
	cmd.Flags().String("min-shares-out", "0", "minimum pool share supply after the join")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
