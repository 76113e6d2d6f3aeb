package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/config"
)

func TestLocalStoreOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.yaml"), []byte("name: test\n"), 0o644))

	store, err := New(config.FileStoreConfig{Type: "Local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	data, err := ReadAll(context.Background(), store, "profile.yaml")
	require.NoError(t, err)
	require.Equal(t, "name: test\n", string(data))

	_, err = store.Open(context.Background(), "missing.yaml")
	require.ErrorIs(t, err, ErrNotFound)

	for _, key := range []string{"", "../etc/passwd", "a\\b", ".."} {
		_, err = store.Open(context.Background(), key)
		require.Error(t, err, key)
	}
}

func TestNewStoreErrors(t *testing.T) {
	_, err := New(config.FileStoreConfig{})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "ftp", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"endpoint": "minio:9000"}})
	require.Error(t, err)
}

func TestS3ObjectKey(t *testing.T) {
	s := &s3Store{prefix: "folio"}
	require.Equal(t, "folio/profile.yaml", s.objectKey("profile.yaml"))
	s = &s3Store{}
	require.Equal(t, "profile.yaml", s.objectKey("/profile.yaml"))
}

func TestNormalizeEndpoint(t *testing.T) {
	require.Equal(t, "http://minio:9000", normalizeEndpoint("minio:9000", false))
	require.Equal(t, "https://s3.example.com", normalizeEndpoint("s3.example.com/", true))
	require.Equal(t, "http://x", normalizeEndpoint("http://x", true))
}
