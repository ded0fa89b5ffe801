package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"poolDeployer/internal/deploy"
	"poolDeployer/internal/funding"
)

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	params, err := sess.cfg.DeployConfig()
	if err != nil {
		return err
	}

	quote, plan, err := deploy.New(deploy.Env{
		Backend: sess.client,
		Config:  params,
		Logger:  sess.logger,
	}).Plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quote != nil {
		price, err := funding.Price18(*quote)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "oracle price: %s\n", funding.FormatAmount(price, funding.Decimals18))
	}
	for i, token := range params.Tokens {
		fmt.Fprintf(out, "%-8s %s  amount=%s  max_in=%s\n",
			token.Symbol,
			token.Address.Hex(),
			funding.FormatAmount(plan.Amounts[i], token.Decimals),
			funding.FormatAmount(plan.MaxAmountsIn[i], token.Decimals),
		)
	}
	return nil
}
