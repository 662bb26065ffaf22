package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHostUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://localhost:5001/media/")
	require.NoError(t, err)

	asset, err := host.Upload(context.Background(), png("cover.png", "mainImage"), "studio/cover-1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/media/studio/cover-1.png", asset.URL)
	assert.Equal(t, "studio/cover-1.png", asset.PublicID)

	stored, err := os.ReadFile(filepath.Join(dir, "studio", "cover-1.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stored), "\x89PNG"))

	require.NoError(t, host.Delete(context.Background(), asset))
	_, err = os.Stat(filepath.Join(dir, "studio", "cover-1.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, host.Delete(context.Background(), asset))
}

func TestLocalHostStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "/media")
	require.NoError(t, err)

	asset, err := host.Upload(context.Background(), png("x.png", "mainImage"), "../../escape")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)
	assert.Equal(t, "../../escape.png", asset.PublicID)
}
