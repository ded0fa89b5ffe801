package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolDeployer/internal/deploy"
	"poolDeployer/internal/metrics"
	"poolDeployer/internal/storage"
	"poolDeployer/internal/storage/postgres"
)

func runDeploy(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	logger := sess.logger

	params, err := sess.cfg.DeployConfig()
	if err != nil {
		return err
	}

	recorders := storage.MultiRecorder{storage.NewJsonlRecorder(sess.cfg.Journal)}
	if sess.cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, sess.cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		recorders = append(recorders, store)
	}

	recorder := metrics.New(sess.network.Name)
	defer func() {
		if sess.cfg.Pushgateway == "" {
			return
		}
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := recorder.Push(pushCtx, sess.cfg.Pushgateway, "pooldeployer"); err != nil {
			logger.Warn("push metrics failed", zap.Error(err))
		}
	}()

	if sess.network.RealValue {
		logger.Warn("deploying to a real-value network", zap.String("network", sess.network.Name))
	}

	orch := deploy.New(deploy.Env{
		Backend:  sess.client,
		Config:   params,
		Logger:   logger,
		Recorder: recorders,
		Metrics:  recorder,
		Guard:    deploy.NewGuard(sess.cfg.Guard, sess.cfg.Force),
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run:          %s\n", result.RunID)
	fmt.Fprintf(cmd.OutOrStdout(), "pool:         %s\n", result.Pool.Address.Hex())
	fmt.Fprintf(cmd.OutOrStdout(), "pool id:      %s\n", result.Pool.ID.Hex())
	fmt.Fprintf(cmd.OutOrStdout(), "join status:  %d\n", result.JoinStatus)
	fmt.Fprintf(cmd.OutOrStdout(), "total supply: %s\n", result.TotalSupply.String())
	return nil
}
