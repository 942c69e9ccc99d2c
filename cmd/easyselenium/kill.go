package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"easyselenium/internal/core"
	"easyselenium/internal/repository"
	"easyselenium/pkg/browser"
)

func newKillCmd() *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "kill <session-id>",
		Short: "Terminate a session by id without its owning process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			// The session may never have been registered, so the registry is optional here
			var registry sessionStore
			repo, err := repository.NewSQLiteRepository(cfg.Database.Path)
			if err != nil {
				logger.Warn("Registry unavailable", zap.Error(err))
			} else {
				defer repo.Close()
				registry = repo
			}

			k := &killer{
				registry:    registry,
				kill:        browser.CloseChromeBySession,
				defaultHost: cfg.Selenium.Host,
				logger:      logger,
			}
			return k.Kill(cmd.Context(), args[0], host)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Selenium server URL (default: the registered host, then the configured one)")
	return cmd
}

type sessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*core.SessionRecord, error)
	RemoveSession(ctx context.Context, sessionID string) error
}

// killer terminates one session and drops its registry record
type killer struct {
	registry    sessionStore // may be nil
	kill        core.SessionKiller
	defaultHost string
	logger      *zap.Logger
}

// Kill terminates id on host. An empty host is taken from the registry
// record, then from the configuration. A session the server no longer
// knows counts as killed.
func (k *killer) Kill(ctx context.Context, id, host string) error {
	if host == "" && k.registry != nil {
		rec, err := k.registry.GetSession(ctx, id)
		if err != nil {
			k.logger.Warn("Failed to look up session record", zap.Error(err))
		} else if rec != nil {
			host = rec.Host
		}
	}
	if host == "" {
		host = k.defaultHost
	}

	if err := k.kill(host, id); err != nil {
		if !browser.IsSessionGone(err) {
			return fmt.Errorf("failed to kill session %s: %w", id, err)
		}
		k.logger.Info("Session already gone", zap.String("session_id", id), zap.String("host", host))
	} else {
		k.logger.Info("Session killed", zap.String("session_id", id), zap.String("host", host))
	}

	if k.registry != nil {
		if err := k.registry.RemoveSession(ctx, id); err != nil {
			k.logger.Warn("Failed to remove session record", zap.Error(err))
		}
	}
	return nil
}
