package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinweaver/internal/llm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Record(ctx, llm.CallRecord{
		ID: "call-1", Backend: "mock", PromptChars: 100, ResponseChars: 50,
		Duration: 20 * time.Millisecond, StartedAt: base,
	})
	store.Record(ctx, llm.CallRecord{
		ID: "call-2", Backend: "proxy", PromptChars: 200,
		Duration: 80 * time.Millisecond, Err: "status 502", StartedAt: base.Add(time.Minute),
	})

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "call-2", entries[0].ID)
	assert.Equal(t, "status 502", entries[0].Err)
	assert.Equal(t, "call-1", entries[1].ID)
	assert.Equal(t, 50, entries[1].ResponseChars)
	assert.Equal(t, 20*time.Millisecond, entries[1].Duration)
	assert.True(t, entries[1].StartedAt.Equal(base))
}

func TestStore_RecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.Record(ctx, llm.CallRecord{
			ID: string(rune('a' + i)), Backend: "mock",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
