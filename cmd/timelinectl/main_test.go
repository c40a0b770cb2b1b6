package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/timeline/internal/tokenstore"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func tokenFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	t.Setenv("TIMELINE_TOKEN_STORE", "file")
	t.Setenv("TIMELINE_TOKEN_FILE", path)
	return path
}

func TestTokenImportFromFlag(t *testing.T) {
	path := tokenFile(t)

	out, err := execute(t, "token", "import", "--access-token", "abc", "--account", "me")
	require.NoError(t, err)
	require.Equal(t, "Token stored for me\n", out)

	token, err := tokenstore.NewFileStore(path).Load(context.Background(), "me")
	require.NoError(t, err)
	require.Equal(t, "abc", token.AccessToken)
	require.True(t, token.ExpiresAt.IsZero())
}

func TestTokenImportFromFile(t *testing.T) {
	path := tokenFile(t)
	source := filepath.Join(t.TempDir(), "oauth.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"access_token":"xyz","refresh_token":"r"}`), 0o600))

	_, err := execute(t, "token", "import", "-f", source, "--expires-in", "1h")
	require.NoError(t, err)

	token, err := tokenstore.NewFileStore(path).Load(context.Background(), "primary")
	require.NoError(t, err)
	require.Equal(t, "xyz", token.AccessToken)
	require.Equal(t, "r", token.RefreshToken)
	require.False(t, token.ExpiresAt.IsZero())
}

func TestTokenImportRequiresSource(t *testing.T) {
	tokenFile(t)
	_, err := execute(t, "token", "import")
	require.EqualError(t, err, "one of --file or --access-token is required")
}

func TestConnectionsWithoutTokenPointsAtImport(t *testing.T) {
	tokenFile(t)
	_, err := execute(t, "connections")
	require.ErrorIs(t, err, tokenstore.ErrTokenNotFound)
	require.ErrorContains(t, err, "timelinectl token import")
}

func TestConnectionsListsDirectory(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"userConnections":[{"displayName":"alice","fullName":"Alice A","location":"Madrid"}]}`))
	}))
	defer srv.Close()

	tokenFile(t)
	t.Setenv("TIMELINE_UPSTREAM_URL", srv.URL)
	_, err := execute(t, "token", "import", "--access-token", "abc")
	require.NoError(t, err)

	out, err := execute(t, "connections")
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", auth)
	require.Contains(t, out, "alice")
	require.Contains(t, out, "Alice A")
	require.Contains(t, out, "Madrid")
}

func TestWeekRejectsInvalidWindow(t *testing.T) {
	tokenFile(t)
	_, err := execute(t, "week", "-c", "alice", "--start", "2025-03-20", "--end", "2025-03-17")
	require.Error(t, err)
	require.ErrorContains(t, err, "end_date")
}
