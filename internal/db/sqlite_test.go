package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/jobfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLite_IncrementUsageIfBelow(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	count, ok, err := store.IncrementUsageIfBelow(ctx, "acct-1", "2026-03", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, count)

	count, ok, err = store.IncrementUsageIfBelow(ctx, "acct-1", "2026-03", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	_, ok, err = store.IncrementUsageIfBelow(ctx, "acct-1", "2026-03", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := store.UsageCount(ctx, "acct-1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 2, current, "denied attempts must not change the counter")
}

func TestSQLite_PeriodsAndAccountsAreIndependent(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	_, ok, err := store.IncrementUsageIfBelow(ctx, "acct-1", "2026-03", 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.IncrementUsageIfBelow(ctx, "acct-1", "2026-04", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.IncrementUsageIfBelow(ctx, "acct-2", "2026-03", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := store.UsageCount(ctx, "acct-3", "2026-03")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLite_NegativeLimitIsUnlimited(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		count, ok, err := store.IncrementUsageIfBelow(ctx, "acct", "2026-03", types.UnlimitedQuota)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, count)
	}
}

func TestSQLite_ConcurrentIncrementsNeverExceedLimit(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()
	const limit = 3

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.IncrementUsageIfBelow(ctx, "acct", "2026-03", limit)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, approved)
	count, err := store.UsageCount(ctx, "acct", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}

func TestSQLite_UsageEvents(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, store.InsertUsageEvent(ctx, types.UsageEvent{
		AccountID:    "acct",
		Period:       "2026-03",
		Kind:         types.GenerationInitial,
		DocumentKind: types.DocumentResume,
		Count:        1,
		CreatedAt:    created,
	}))
	require.NoError(t, store.InsertUsageEvent(ctx, types.UsageEvent{
		ID:           "evt-2",
		AccountID:    "acct",
		Period:       "2026-03",
		Kind:         types.GenerationRegeneration,
		DocumentKind: types.DocumentCoverLetter,
		Count:        2,
		CreatedAt:    created.Add(time.Minute),
	}))

	events, err := store.UsageEvents(ctx, "acct", "2026-03")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, types.GenerationInitial, events[0].Kind)
	assert.True(t, created.Equal(events[0].CreatedAt))
	assert.Equal(t, "evt-2", events[1].ID)
	assert.Equal(t, types.DocumentCoverLetter, events[1].DocumentKind)
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, _, err = first.IncrementUsageIfBelow(ctx, "acct", "2026-03", 5)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.UsageCount(ctx, "acct", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
