package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"easyselenium/internal/core"
	"easyselenium/pkg/browser"
)

const pingTimeout = 5 * time.Second

// PingLogger keeps the registry in step with a browser.Session: it records
// the session on start, refreshes last_ping on every call and marks it
// closed on close. A failed close leaves the record open so the reaper
// picks it up once it goes stale. Registry failures are logged, never
// surfaced to the browser call.
type PingLogger struct {
	registry core.RegistryPort
	host     string
	logger   *zap.Logger
}

// NewPingLogger creates a PingLogger for sessions opened against host
func NewPingLogger(registry core.RegistryPort, host string, logger *zap.Logger) *PingLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PingLogger{registry: registry, host: host, logger: logger}
}

// Notify implements browser.Logger
func (p *PingLogger) Notify(ev browser.Event) {
	if ev.SessionID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	var err error
	switch ev.Op {
	case browser.OpStart:
		err = p.registry.RegisterSession(ctx, &core.SessionRecord{
			Owner:     ev.Owner,
			SessionID: ev.SessionID,
			Host:      p.host,
		})
	case browser.OpClose:
		err = p.registry.CloseSession(ctx, ev.SessionID)
	case browser.OpCloseFailed:
		p.logger.Warn("Session quit failed, leaving it for the reaper",
			zap.String("session_id", ev.SessionID),
			zap.String("owner", ev.Owner),
		)
		return
	default:
		err = p.registry.TouchSession(ctx, ev.SessionID)
	}
	if err != nil {
		p.logger.Warn("Failed to update session registry",
			zap.String("session_id", ev.SessionID),
			zap.String("op", ev.Op),
			zap.Error(err),
		)
	}
}
