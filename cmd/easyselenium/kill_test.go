package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"easyselenium/internal/core"
	"easyselenium/internal/repository"
)

func newKillRepo(t *testing.T) *repository.SQLiteRepository {
	t.Helper()
	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.RegisterSession(context.Background(), &core.SessionRecord{
		Owner: "parser", SessionID: "s1", Host: "http://grid:4444/wd/hub",
	}))
	return repo
}

func TestKillUsesRegisteredHostAndRemovesRecord(t *testing.T) {
	ctx := context.Background()
	repo := newKillRepo(t)

	var gotHost string
	k := &killer{
		registry:    repo,
		kill:        func(host, _ string) error { gotHost = host; return nil },
		defaultHost: "http://localhost:4444/wd/hub",
		logger:      zap.NewNop(),
	}
	require.NoError(t, k.Kill(ctx, "s1", ""))
	assert.Equal(t, "http://grid:4444/wd/hub", gotHost)

	rec, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKillTreatsUnknownSessionAsGone(t *testing.T) {
	ctx := context.Background()
	repo := newKillRepo(t)

	k := &killer{
		registry: repo,
		kill:     func(string, string) error { return errors.New("invalid session id: session deleted") },
		logger:   zap.NewNop(),
	}
	require.NoError(t, k.Kill(ctx, "s1", "http://other:4444/wd/hub"))

	rec, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKillKeepsRecordWhenServerUnreachable(t *testing.T) {
	ctx := context.Background()
	repo := newKillRepo(t)

	k := &killer{
		registry: repo,
		kill:     func(string, string) error { return errors.New("connection refused") },
		logger:   zap.NewNop(),
	}
	assert.Error(t, k.Kill(ctx, "s1", ""))

	rec, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestKillWithoutRegistryFallsBackToDefaultHost(t *testing.T) {
	var gotHost string
	k := &killer{
		kill:        func(host, _ string) error { gotHost = host; return nil },
		defaultHost: "http://localhost:4444/wd/hub",
		logger:      zap.NewNop(),
	}
	require.NoError(t, k.Kill(context.Background(), "s1", ""))
	assert.Equal(t, "http://localhost:4444/wd/hub", gotHost)
}
