package transit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundel.dev/transit/downloader"
	"roundel.dev/transit/feedcache"
	"roundel.dev/transit/testutil"
)

type fakeDownloader struct {
	body []byte
	err  error
	gets int
}

func (d *fakeDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options downloader.GetOptions,
) ([]byte, error) {
	d.gets++
	return d.body, d.err
}

func managerZip(t *testing.T) []byte {
	return testutil.BuildZip(t, directFeed())
}

func TestManagerDownloadsAndCaches(t *testing.T) {
	dl := &fakeDownloader{body: managerZip(t)}
	m := NewManager(feedcache.NewMemory())
	m.Downloader = dl

	feed, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 1)
	assert.Equal(t, 1, dl.gets)

	// A second load within the refresh interval stays on the cache.
	feed, err = m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 1)
	assert.Equal(t, 1, dl.gets)
}

func TestManagerRefreshFallsBackToCache(t *testing.T) {
	dl := &fakeDownloader{body: managerZip(t)}
	m := NewManager(feedcache.NewMemory())
	m.Downloader = dl

	_, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)

	// Age the cached record out, then break the network.
	m.RefreshInterval = 0
	dl.err = fmt.Errorf("connection refused")

	feed, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 1)
}

func TestManagerBrokenDownloadFallsBackToCache(t *testing.T) {
	dl := &fakeDownloader{body: managerZip(t)}
	m := NewManager(feedcache.NewMemory())
	m.Downloader = dl

	_, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)

	m.RefreshInterval = 0
	dl.body = []byte("not a zip")

	feed, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 1)
}

func TestManagerNoCacheNoNetwork(t *testing.T) {
	dl := &fakeDownloader{err: fmt.Errorf("connection refused")}
	m := NewManager(feedcache.NewMemory())
	m.Downloader = dl

	_, err := m.LoadFeed(context.Background(), "http://example.com/gtfs.zip", nil)
	assert.ErrorContains(t, err, "downloading feed")
}
