package kvstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "planflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	impls := map[string]func(t *testing.T) kvstore.Store{
		"memory": func(t *testing.T) kvstore.Store { return NewInMemoryStore() },
		"sqlite": func(t *testing.T) kvstore.Store { return newSQLite(t) },
	}

	for name, newStore := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing_key", func(t *testing.T) {
				store := newStore(t)
				v, found, err := store.Get(ctx, "nope")
				require.NoError(t, err)
				assert.False(t, found)
				assert.Nil(t, v)
			})

			t.Run("set_get_overwrite_delete", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, store.Set(ctx, "registry", []byte(`["a"]`)))
				v, found, err := store.Get(ctx, "registry")
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, `["a"]`, string(v))

				require.NoError(t, store.Set(ctx, "registry", []byte(`["b"]`)))
				v, _, err = store.Get(ctx, "registry")
				require.NoError(t, err)
				assert.Equal(t, `["b"]`, string(v))

				require.NoError(t, store.Delete(ctx, "registry"))
				_, found, err = store.Get(ctx, "registry")
				require.NoError(t, err)
				assert.False(t, found)

				assert.NoError(t, store.Delete(ctx, "registry"))
			})

			t.Run("empty_key", func(t *testing.T) {
				store := newStore(t)
				_, _, err := store.Get(ctx, " ")
				assert.ErrorIs(t, err, kvstore.ErrKeyRequired)
				assert.ErrorIs(t, store.Set(ctx, "", []byte("x")), kvstore.ErrKeyRequired)
				assert.ErrorIs(t, store.Delete(ctx, ""), kvstore.ErrKeyRequired)
			})

			t.Run("json_helpers", func(t *testing.T) {
				store := newStore(t)
				var items []string
				found, err := kvstore.LoadJSON(ctx, store, "milestones", &items)
				require.NoError(t, err)
				assert.False(t, found)

				require.NoError(t, kvstore.SaveJSON(ctx, store, "milestones", []string{"Step 1", "Step 2"}))
				found, err = kvstore.LoadJSON(ctx, store, "milestones", &items)
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, []string{"Step 1", "Step 2"}, items)

				require.NoError(t, store.Set(ctx, "broken", []byte("{")))
				_, err = kvstore.LoadJSON(ctx, store, "broken", &items)
				assert.Error(t, err)
			})
		})
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("copies_values", func(t *testing.T) {
		store := NewInMemoryStore()
		value := []byte("abc")
		require.NoError(t, store.Set(ctx, "k", value))
		value[0] = 'x'

		got, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
		got[1] = 'x'

		again, _, _ := store.Get(ctx, "k")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("closed", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Close())
		_, _, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, kvstore.ErrClosed)
		assert.ErrorIs(t, store.Set(ctx, "k", nil), kvstore.ErrClosed)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		store := NewInMemoryStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, store.Set(cctx, "k", nil), context.Canceled)
	})
}

func TestSQLiteStore(t *testing.T) {
	t.Run("requires_path", func(t *testing.T) {
		_, err := OpenSQLite("")
		assert.Error(t, err)
	})

	t.Run("persists_across_reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "planflow.db")

		store, err := OpenSQLite(path)
		require.NoError(t, err)
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return fixed }
		require.NoError(t, store.Set(ctx, "toggle:2026-03-01", []byte("true")))
		require.NoError(t, store.Close())

		reopened, err := OpenSQLite(path)
		require.NoError(t, err)
		defer reopened.Close()
		v, found, err := reopened.Get(ctx, "toggle:2026-03-01")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "true", string(v))

		sqlDB, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		defer sqlDB.Close()
		var updatedAt string
		require.NoError(t, sqlDB.QueryRow(`SELECT updated_at FROM kv WHERE key = ?`, "toggle:2026-03-01").Scan(&updatedAt))
		assert.Equal(t, fixed.Format(time.RFC3339Nano), updatedAt)
	})

	t.Run("connection_pragmas", func(t *testing.T) {
		store := newSQLite(t)

		var journalMode string
		require.NoError(t, store.sqlDB.QueryRow(`PRAGMA journal_mode`).Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var busyTimeout int
		require.NoError(t, store.sqlDB.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout))
		assert.Equal(t, 5000, busyTimeout)

		var synchronous int
		require.NoError(t, store.sqlDB.QueryRow(`PRAGMA synchronous`).Scan(&synchronous))
		assert.Equal(t, 1, synchronous, "NORMAL")
	})

	t.Run("nil_value_stored_as_empty", func(t *testing.T) {
		ctx := context.Background()
		store := newSQLite(t)
		require.NoError(t, store.Set(ctx, "k", nil))
		v, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, v)
	})
}

func TestOpen(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	_, isMemory := store.(*InMemoryStore)
	assert.True(t, isMemory)

	store, err = Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()
	_, isSQLite := store.(*SQLiteStore)
	assert.True(t, isSQLite)
}
