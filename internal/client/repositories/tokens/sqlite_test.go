package tokens

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte("v1")))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	v, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, v) // contract: (nil, nil) when the row is missing
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new"))) // upsert

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	require.NoError(t, r.Delete(ctx, "k"))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)

	// deleting again must not fail
	require.NoError(t, r.Delete(ctx, "k"))
}

func TestClear_RemovesEverything(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		v, err := r.Get(ctx, k)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}

func TestSQLiteStore_SaveLoadClear_RoundTrip(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db)
	ctx := context.Background()

	// empty store reads as logged out
	a, r, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, r)

	require.NoError(t, s.Save(ctx, "A", "B"))

	a, r, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", a)
	assert.Equal(t, "B", r)

	// persisted under the application-namespaced keys, nothing else
	repo := NewSQLiteRepository(db)
	v, err := repo.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), v)
	v, err = repo.Get(ctx, RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("B"), v)

	require.NoError(t, s.Clear(ctx))

	v, err = repo.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = repo.Get(ctx, RefreshTokenKey)
	require.NoError(t, err)
	assert.Nil(t, v)

	// clearing when already logged out is fine
	require.NoError(t, s.Clear(ctx))
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, "file:tokens_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db)
	require.NoError(t, s.Save(ctx, "A", "B"))

	a, r, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", a)
	assert.Equal(t, "B", r)
}
