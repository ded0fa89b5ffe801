package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolDeployer/internal/config"
	"poolDeployer/internal/deploy"
	"poolDeployer/internal/dex"
	"poolDeployer/internal/funding"
	"poolDeployer/internal/storage/postgres"
)

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	poolFlag, _ := cmd.Flags().GetString("pool")
	pool, err := resolvePoolAddress(ctx, sess, poolFlag)
	if err != nil {
		return err
	}

	id, err := dex.PoolID(ctx, sess.client, pool)
	if err != nil {
		return err
	}
	supply, err := dex.TotalSupply(ctx, sess.client, pool)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pool:         %s\n", pool.Hex())
	fmt.Fprintf(out, "pool id:      %s\n", id.Hex())
	fmt.Fprintf(out, "total supply: %s\n", funding.FormatAmount(supply, funding.Decimals18))
	return nil
}

// resolvePoolAddress prefers the flag, then the latest Postgres record, then the guard marker.
func resolvePoolAddress(ctx context.Context, sess *session, poolFlag string) (common.Address, error) {
	if poolFlag != "" {
		return config.ParseAddress("pool", poolFlag)
	}

	if sess.cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, sess.cfg.PGDSN)
		if err != nil {
			return common.Address{}, fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		record, ok, err := store.LatestDeployment(ctx, sess.network.Name)
		if err != nil {
			return common.Address{}, err
		}
		if ok && record.PoolAddress != "" {
			sess.logger.Info("using latest recorded deployment", zap.String("run_id", record.RunID))
			return config.ParseAddress("pool", record.PoolAddress)
		}
	}

	marker, ok, err := deploy.NewGuard(sess.cfg.Guard, false).Load()
	if err != nil {
		return common.Address{}, err
	}
	if ok && marker.PoolAddress != "" {
		return config.ParseAddress("pool", marker.PoolAddress)
	}
	return common.Address{}, fmt.Errorf("pool address is required (--pool)")
}
