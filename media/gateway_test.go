package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayUploadKeepsInputOrder(t *testing.T) {
	host := newFakeHost()
	// later files finish first
	host.delay["a.png"] = 40 * time.Millisecond
	host.delay["b.png"] = 20 * time.Millisecond
	g := NewGateway(host, Options{Folder: "studio", Concurrency: 4})

	files := []File{png("a.png", "galleryImages"), png("b.png", "galleryImages"), png("c.png", "galleryImages")}
	results := g.Upload(context.Background(), files)

	require.Len(t, results, 3)
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, results[i].Err)
		assert.True(t, strings.HasPrefix(results[i].Asset.URL, "https://cdn.test/studio/"+name+"-"), results[i].Asset.URL)
		assert.Equal(t, KindImage, results[i].Asset.Kind)
	}
}

func TestGatewayUploadFailuresAreIndependent(t *testing.T) {
	host := newFakeHost()
	host.failUpload["bad.png"] = -1
	g := NewGateway(host, Options{})

	results := g.Upload(context.Background(), []File{png("ok.png", "galleryImages"), png("bad.png", "galleryImages"), png("ok2.png", "galleryImages")})

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
	var ue *UploadError
	require.True(t, errors.As(results[1].Err, &ue))
	assert.Equal(t, "bad.png", ue.Filename)
	assert.Equal(t, "galleryImages", ue.Field)
	assert.Len(t, host.uploaded, 2)
}

func TestGatewayUploadAllReleasesOnFailure(t *testing.T) {
	host := newFakeHost()
	host.failUpload["broken.png"] = -1
	g := NewGateway(host, Options{Folder: "studio"})

	assets, err := g.UploadAll(context.Background(), []File{
		png("main.png", "mainImage"),
		png("g1.png", "galleryImages"),
		png("broken.png", "galleryImages"),
	})

	require.Error(t, err)
	assert.Nil(t, assets)
	var ue *UploadError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "broken.png", ue.Filename)
	assert.ElementsMatch(t, host.uploaded, host.deleted)
	assert.Len(t, host.deleted, 2)
}

func TestGatewayUploadAllSuccess(t *testing.T) {
	host := newFakeHost()
	g := NewGateway(host, Options{})

	assets, err := g.UploadAll(context.Background(), []File{png("main.png", "mainImage"), png("g1.png", "galleryImages")})

	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Contains(t, assets[0].URL, "main-")
	assert.Contains(t, assets[1].URL, "g1-")
	assert.Empty(t, host.deleted)
}

func TestGatewayReleaseRecordsOrphans(t *testing.T) {
	host := newFakeHost()
	host.failDelete["stuck"] = true
	orphans := &orphanLog{}
	g := NewGateway(host, Options{Orphans: orphans})

	g.Release(context.Background(), []Asset{{PublicID: "gone"}, {PublicID: "stuck", URL: "https://cdn.test/stuck"}})

	assert.Equal(t, []string{"gone"}, host.deleted)
	require.Len(t, orphans.assets, 1)
	assert.Equal(t, "stuck", orphans.assets[0].PublicID)
}

func TestGatewayRetriesTransientFailures(t *testing.T) {
	host := newFakeHost()
	host.failUpload["flaky.png"] = 2
	g := NewGateway(host, Options{Retries: 3})

	results := g.Upload(context.Background(), []File{png("flaky.png", "mainImage")})

	require.NoError(t, results[0].Err)
	assert.Equal(t, 3, host.attempts["flaky.png"])
}

func TestGatewaySingleAttemptByDefault(t *testing.T) {
	host := newFakeHost()
	host.failUpload["flaky.png"] = 1
	g := NewGateway(host, Options{})

	results := g.Upload(context.Background(), []File{png("flaky.png", "mainImage")})

	assert.Error(t, results[0].Err)
	assert.Equal(t, 1, host.attempts["flaky.png"])
}

func TestObjectKey(t *testing.T) {
	now := time.Unix(0, 1700000000000000000)
	key := ObjectKey("/studio/", "My Site Plan (final).PNG", now)
	assert.True(t, strings.HasPrefix(key, "studio/my-site-plan-final-1700000000000000000-"), key)

	assert.True(t, strings.HasPrefix(ObjectKey("", "???.jpg", now), "file-"))
}
