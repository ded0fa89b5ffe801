package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolDeployer/internal/chain"
	"poolDeployer/internal/config"
)

// session bundles what every command needs once config is loaded.
type session struct {
	cfg     config.Config
	network config.ResolvedNetwork
	logger  *zap.Logger
	client  *chain.Client
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
	_ = s.logger.Sync()
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	network, err := config.LookupNetwork(cfg.Network, cfg.Networks)
	if err != nil {
		return nil, err
	}
	secrets, err := config.LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}
	resolved, err := network.Resolve(secrets, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", network.Name, err)
	}

	keyring, err := chain.NewKeyring(resolved.PrivateKeys)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewClient(ctx, resolved.RPCURL, keyring, chain.Options{
		GasPrice:       resolved.GasPrice,
		GasLimit:       resolved.GasLimit,
		ConfirmTimeout: cfg.ConfirmTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	if err := client.VerifyChainID(resolved.ChainID); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected",
		zap.String("network", resolved.Name),
		zap.String("chain_id", client.ChainID().String()),
		zap.Bool("real_value", resolved.RealValue),
		zap.Int("accounts", len(keyring.Addresses())),
	)

	return &session{cfg: cfg, network: resolved, logger: logger, client: client}, nil
}
