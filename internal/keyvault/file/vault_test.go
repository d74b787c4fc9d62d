package file

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpisystems/credvault/internal/crypto"
	"github.com/kpisystems/credvault/internal/model"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "%s.key"))
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := crypto.NewECBCodec().GenerateKey()
	require.NoError(t, err)
	return key
}

func TestVault_StoreAndLoad(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)
	key := testKey(t)

	require.NoError(t, v.Store(ctx, "alice", key))

	loaded, err := v.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, key, loaded)
}

func TestVault_Store_FileContents(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	v := New(filepath.Join(dir, "%s.key"))
	key := testKey(t)

	require.NoError(t, v.Store(ctx, "alice", key))

	data, err := os.ReadFile(filepath.Join(dir, "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(key), string(data))
}

func TestVault_Store_Overwrites(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)
	first := testKey(t)
	second := testKey(t)

	require.NoError(t, v.Store(ctx, "alice", first))
	require.NoError(t, v.Store(ctx, "alice", second))

	loaded, err := v.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestVault_Load_NotFound(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	_, err := v.Load(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVault_Load_MalformedBase64(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	v := New(filepath.Join(dir, "%s.key"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.key"), []byte("not base64!!!"), 0o600))

	_, err := v.Load(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrDecode)
}

func TestVault_Load_WrongLengthKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	v := New(filepath.Join(dir, "%s.key"))
	encoded := base64.StdEncoding.EncodeToString([]byte("too-short"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.key"), []byte(encoded), 0o600))

	_, err := v.Load(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrDecode)
}

func TestVault_Remove(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	t.Run("removes existing key", func(t *testing.T) {
		require.NoError(t, v.Store(ctx, "alice", testKey(t)))

		removed, err := v.Remove(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, removed)

		_, err = v.Load(ctx, "alice")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("absent key is not an error", func(t *testing.T) {
		removed, err := v.Remove(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}
