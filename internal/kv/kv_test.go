package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Store contract against one backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report ok=false")

	require.NoError(t, s.Set(ctx, KeyProducts, `[{"id":1}]`))
	got, ok, err := s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, got)

	require.NoError(t, s.Set(ctx, KeyProducts, `[]`))
	got, _, err = s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	require.NoError(t, s.Delete(ctx, KeyProducts))
	_, ok, err = s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	exerciseStore(t, s)
}

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyAuthenticated, "true"))
	require.NoError(t, s.Set(ctx, KeyUsers, `[{"id":7}]`))
	require.NoError(t, s.Close())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyAuthenticated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	v, _, err = reopened.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7}]`, v)
}

func TestFileStore_EmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	_, ok, err := s.Get(context.Background(), KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFileIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestFileStore_EmptyPathIsStorageError(t *testing.T) {
	_, err := OpenFile("  ")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(context.Background(), KeyAuthenticated, "true"))
	got, err := mr.Get("test:" + KeyAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestRedisStore_FailureWrapsErrStorage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	s, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	mr.Close()
	err = s.Set(context.Background(), KeyProducts, "[]")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Options{Backend: "", Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}
