package visitors

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/db"
)

func newTestTracker(t *testing.T, now time.Time) *Tracker {
	t.Helper()
	conn, err := db.Init(filepath.Join(t.TempDir(), "visitors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tr, err := NewTracker(conn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	tr.now = func() time.Time { return now }
	return tr
}

func TestHashIP(t *testing.T) {
	tr := newTestTracker(t, time.Now())

	h := tr.HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tr.HashIP("203.0.113.7"))
	assert.NotEqual(t, h, tr.HashIP("203.0.113.8"))

	other := newTestTracker(t, time.Now())
	assert.NotEqual(t, h, other.HashIP("203.0.113.7"), "salt differs per tracker")
}

func TestRecordNeverStoresRawIP(t *testing.T) {
	tr := newTestTracker(t, time.Now())
	ctx := context.Background()
	require.NoError(t, tr.Record(ctx, "198.51.100.23", "curl/8", "/"))

	visits, err := tr.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.NotContains(t, visits[0].HashedIP, "198.51.100.23")
	assert.Equal(t, "/", visits[0].Path)
	assert.Equal(t, "curl/8", visits[0].UserAgent)
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.Local)
	tr := newTestTracker(t, now)
	ctx := context.Background()

	record := func(at time.Time, ip string) {
		tr.now = func() time.Time { return at }
		require.NoError(t, tr.Record(ctx, ip, "ua", "/"))
	}
	record(now.Add(-time.Hour), "a")
	record(now.Add(-2*time.Hour), "a")
	record(now.Add(-3*24*time.Hour), "b")
	record(now.Add(-30*24*time.Hour), "c")
	tr.now = func() time.Time { return now }

	s, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, s.Total)
	assert.EqualValues(t, 3, s.Unique)
	assert.EqualValues(t, 2, s.Today)
	assert.EqualValues(t, 3, s.ThisWeek)
}

func TestCleanup(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(t, now)
	ctx := context.Background()

	tr.now = func() time.Time { return now.Add(-Retention - time.Hour) }
	require.NoError(t, tr.Record(ctx, "old", "ua", "/"))
	tr.now = func() time.Time { return now.Add(-24 * time.Hour) }
	require.NoError(t, tr.Record(ctx, "new", "ua", "/"))
	tr.now = func() time.Time { return now }

	n, err := tr.Cleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	visits, err := tr.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, tr.HashIP("new"), visits[0].HashedIP)
}
