package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"easyselenium/internal/core"
	"easyselenium/pkg/browser"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, *time.Time) {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	return repo, &clock
}

func TestRegisterAndGetSession(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RegisterSession(ctx, &core.SessionRecord{
		Owner: "parser", SessionID: "s1", Host: "http://grid:4444/wd/hub",
	}))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "parser", got.Owner)
	assert.True(t, got.IsOpen())

	missing, err := repo.GetSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.RegisterSession(ctx, &core.SessionRecord{Owner: "x"}))
}

func TestStaleSessionsSkipsFreshAndClosed(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"old", "closed", "fresh"} {
		require.NoError(t, repo.RegisterSession(ctx, &core.SessionRecord{Owner: "p", SessionID: id, Host: "h"}))
	}
	require.NoError(t, repo.CloseSession(ctx, "closed"))

	*clock = clock.Add(time.Hour)
	require.NoError(t, repo.TouchSession(ctx, "fresh"))

	stale, err := repo.StaleSessions(ctx, clock.Add(-30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].SessionID)

	require.NoError(t, repo.RemoveSession(ctx, "old"))
	stale, err = repo.StaleSessions(ctx, clock.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRegisterReopensClosedSession(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	rec := func() *core.SessionRecord { return &core.SessionRecord{Owner: "p", SessionID: "s", Host: "h"} }
	require.NoError(t, repo.RegisterSession(ctx, rec()))
	require.NoError(t, repo.CloseSession(ctx, "s"))
	require.NoError(t, repo.RegisterSession(ctx, rec()))

	got, err := repo.GetSession(ctx, "s")
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}

func TestPingLoggerFollowsSessionLifecycle(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()
	ping := NewPingLogger(repo, "http://grid:4444/wd/hub", nil)

	ping.Notify(browser.Event{Owner: "parser", SessionID: "s1", Op: browser.OpStart})
	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://grid:4444/wd/hub", got.Host)

	*clock = clock.Add(10 * time.Minute)
	ping.Notify(browser.Event{Owner: "parser", SessionID: "s1", Op: "get"})
	got, err = repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.LastPing.Equal(*clock))

	ping.Notify(browser.Event{Owner: "parser", SessionID: "s1", Op: browser.OpClose})
	got, err = repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.IsOpen())

	// events without a session are ignored
	ping.Notify(browser.Event{Owner: "parser", Op: "get"})
}

type failingRegistry struct{ core.RegistryPort }

func (failingRegistry) TouchSession(context.Context, string) error { return assert.AnError }

func TestPingLoggerLogsRegistryErrors(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	ping := NewPingLogger(failingRegistry{}, "h", zap.New(obs))

	ping.Notify(browser.Event{Owner: "p", SessionID: "s", Op: "get"})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to update session registry", logs.All()[0].Message)
}

type quitFailDriver struct {
	selenium.WebDriver
}

func (quitFailDriver) SessionID() string { return "orphan" }
func (quitFailDriver) Quit() error       { return errors.New("connection reset") }

func TestFailedQuitLeavesSessionForReaper(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	dial := func(string, selenium.Capabilities, time.Duration, time.Duration) (selenium.WebDriver, error) {
		return quitFailDriver{}, nil
	}
	s, err := browser.New("parser", browser.WithDialer(dial))
	require.NoError(t, err)
	s.SetLogger(NewPingLogger(repo, "http://grid:4444/wd/hub", nil))

	_, err = s.Start()
	require.NoError(t, err)
	require.Error(t, s.Close())

	got, err := repo.GetSession(ctx, "orphan")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsOpen())

	*clock = clock.Add(24 * time.Hour)
	stale, err := repo.StaleSessions(ctx, clock.Add(-30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "orphan", stale[0].SessionID)
}
