package tokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// repositoryContract exercises the behavior every Repository implementation
// must share.
func repositoryContract(t *testing.T, r Repository) {
	t.Helper()
	ctx := context.Background()

	v, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Set(ctx, "k", []byte("v1")))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, r.Set(ctx, "k", []byte("v2")))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v)

	require.NoError(t, r.Delete(ctx, "k"))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestInMemoryRepository_Contract(t *testing.T) {
	repositoryContract(t, NewInMemoryRepository())
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repositoryContract(t, NewSQLiteRepository(setupDB(t)))
}

func TestInMemoryRepository_GetCopiesValue(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	require.NoError(t, r.Set(ctx, "k", []byte("abc")))
	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	v[0] = 'x'

	again, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
