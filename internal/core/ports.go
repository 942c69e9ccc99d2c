package core

import (
	"context"
	"time"
)

// RegistryPort defines the interface for persisting live browser sessions
type RegistryPort interface {
	// RegisterSession records a freshly started session
	RegisterSession(ctx context.Context, record *SessionRecord) error

	// TouchSession refreshes the last ping of a session
	TouchSession(ctx context.Context, sessionID string) error

	// CloseSession marks a session as closed by its owner
	CloseSession(ctx context.Context, sessionID string) error

	// StaleSessions lists open sessions whose last ping is older than cutoff
	StaleSessions(ctx context.Context, cutoff time.Time) ([]*SessionRecord, error)

	// RemoveSession deletes a session record
	RemoveSession(ctx context.Context, sessionID string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// SessionKiller terminates a remote session by id, without owning it
type SessionKiller func(host, sessionID string) error
