package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, now *time.Time) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.clock = func() time.Time { return *now }
	return s
}

func TestHashIP(t *testing.T) {
	now := time.Now()
	s := openTestStore(t, &now)

	a := s.HashIP("203.0.113.7")
	assert.Len(t, a, 16)
	assert.Equal(t, a, s.HashIP("203.0.113.7"))
	assert.NotEqual(t, a, s.HashIP("203.0.113.8"))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	now = now.Add(-10 * 24 * time.Hour)
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "old", "/about"))
	now = now.Add(10*24*time.Hour - 24*time.Hour)
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.2", "yesterday", "/"))
	now = now.Add(24 * time.Hour)
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.2", "today", "/"))
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.3", "today", "/projects"))

	require.NoError(t, s.RecordCommand(ctx, "cd", true))
	require.NoError(t, s.RecordCommand(ctx, "cd", false))
	require.NoError(t, s.RecordCommand(ctx, "help", true))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 2, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.EqualValues(t, 3, stats.TotalCommands)
	assert.EqualValues(t, 1, stats.FailedCommands)

	require.Len(t, stats.TopCommands, 2)
	assert.Equal(t, "cd", stats.TopCommands[0].Verb)
	assert.EqualValues(t, 2, stats.TopCommands[0].Runs)
	assert.EqualValues(t, 1, stats.TopCommands[0].Failures)

	require.NotEmpty(t, stats.TopPaths)
	assert.Equal(t, PathStat{Path: "/", Views: 2}, stats.TopPaths[0])

	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "/projects", stats.RecentVisitors[0].Path)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	now = now.AddDate(-2, 0, 0)
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "ua", "/"))
	now = now.AddDate(2, 0, 0)
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "ua", "/"))

	removed, err := s.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	visitors, err := s.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, visitors, 1)
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(32)
	require.NoError(t, err)
	b, err := RandomToken(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
