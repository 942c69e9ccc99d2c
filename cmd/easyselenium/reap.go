package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"easyselenium/internal/repository"
	"easyselenium/internal/workflows"
	"easyselenium/pkg/browser"
)

func newReapCmd() *cobra.Command {
	var maxIdle time.Duration
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Terminate registered sessions that stopped pinging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReap(cmd.Context(), maxIdle)
		},
	}
	cmd.Flags().DurationVar(&maxIdle, "max-idle", 0, "Idle time after which a session is reaped (default: reaper.max_idle)")
	return cmd
}

func runReap(ctx context.Context, maxIdle time.Duration) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if maxIdle < 0 {
		return fmt.Errorf("--max-idle must be positive, got %s", maxIdle)
	}
	if maxIdle == 0 {
		maxIdle = cfg.Reaper.MaxIdle
	}

	repo, err := repository.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	defer repo.Close()

	n, err := workflows.NewReapWorkflow(repo, browser.CloseChromeBySession, logger).Reap(ctx, maxIdle)
	if err != nil {
		return err
	}
	fmt.Printf("reaped %d session(s)\n", n)
	return nil
}
