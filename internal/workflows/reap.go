package workflows

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"easyselenium/internal/core"
	"easyselenium/pkg/browser"
	"easyselenium/pkg/utils"
)

// ReapWorkflow terminates sessions whose owners stopped pinging them
type ReapWorkflow struct {
	registry core.RegistryPort
	kill     core.SessionKiller
	logger   *zap.Logger
	now      func() time.Time
}

// NewReapWorkflow creates a new reap workflow
func NewReapWorkflow(registry core.RegistryPort, kill core.SessionKiller, logger *zap.Logger) *ReapWorkflow {
	return &ReapWorkflow{
		registry: registry,
		kill:     kill,
		logger:   logger,
		now:      time.Now,
	}
}

// Reap kills every open session idle for longer than maxIdle and returns
// how many were removed from the registry. A failing kill is logged and
// the session is kept for the next pass.
func (w *ReapWorkflow) Reap(ctx context.Context, maxIdle time.Duration) (int, error) {
	now := w.now()
	stale, err := w.registry.StaleSessions(ctx, now.Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	reaped := 0
	for _, rec := range stale {
		select {
		case <-ctx.Done():
			return reaped, ctx.Err()
		default:
		}

		fields := []zap.Field{
			zap.String("session_id", rec.SessionID),
			zap.String("owner", rec.Owner),
			zap.String("idle", utils.FormatDuration(now.Sub(rec.LastPing))),
		}

		if err := w.kill(rec.Host, rec.SessionID); err != nil && !browser.IsSessionGone(err) {
			w.logger.Warn("Failed to kill session", append(fields, zap.Error(err))...)
			continue
		}

		if err := w.registry.RemoveSession(ctx, rec.SessionID); err != nil {
			w.logger.Warn("Failed to remove session record", append(fields, zap.Error(err))...)
			continue
		}

		reaped++
		w.logger.Info("Session reaped", fields...)
	}

	return reaped, nil
}
