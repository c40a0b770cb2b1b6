package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx, "alice")
	require.ErrorIs(t, err, ErrTokenNotFound)

	expires := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "alice", Token{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}))
	require.NoError(t, store.Save(ctx, "bob", Token{AccessToken: "b1"}))

	got, err := NewFileStore(path).Load(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "a1", got.AccessToken)
	require.Equal(t, "r1", got.RefreshToken)
	require.True(t, expires.Equal(got.ExpiresAt))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))

	require.NoError(t, store.Save(ctx, "alice", Token{AccessToken: "old"}))
	require.NoError(t, store.Save(ctx, "alice", Token{AccessToken: "new"}))

	got, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "new", got.AccessToken)
}

func TestFileStoreRejectsEmptyToken(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	require.ErrorIs(t, store.Save(context.Background(), "alice", Token{AccessToken: "  "}), ErrInvalidToken)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background(), "alice")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	require.False(t, Token{AccessToken: "x"}.Expired(now))
	require.False(t, Token{AccessToken: "x", ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, Token{AccessToken: "x", ExpiresAt: now}.Expired(now))
	require.True(t, Token{AccessToken: "x", ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
