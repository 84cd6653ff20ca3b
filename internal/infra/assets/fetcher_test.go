package assets

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint("https://acct.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
	require.Equal(t, "", sanitizeEndpoint(""))
}

func TestEnsureSkipsPresentFiles(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("[PAD]\n"), 0o600))

	fetcher, err := NewFetcher("http://127.0.0.1:1", "key", "secret", "models", "auto", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, fetcher.Ensure(context.Background(), Object{Key: "vocab.txt", Path: vocab}, Object{}))
}

func TestNewFetcherRequiresBucket(t *testing.T) {
	_, err := NewFetcher("localhost:9000", "k", "s", "", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
