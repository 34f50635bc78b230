package transit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"roundel.dev/transit/downloader"
	"roundel.dev/transit/feedcache"
	"roundel.dev/transit/model"
	"roundel.dev/transit/parse"
)

const (
	DefaultRefreshInterval = 12 * time.Hour
	DefaultStaticTimeout   = 60 * time.Second
	DefaultStaticMaxSize   = 800 << 20 // 800 MB
)

// Manager keeps the planner supplied with feed data: it downloads,
// caches, and parses static feeds. The cache is consulted first; a
// fresh archive is only fetched when the cached one has aged past
// RefreshInterval, and a failed refresh falls back to whatever is
// cached.
type Manager struct {
	RefreshInterval time.Duration
	StaticTimeout   time.Duration
	StaticMaxSize   int
	Downloader      downloader.Downloader
	Logger          *logrus.Logger

	cache feedcache.Storage
}

func NewManager(cache feedcache.Storage) *Manager {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return &Manager{
		RefreshInterval: DefaultRefreshInterval,
		StaticTimeout:   DefaultStaticTimeout,
		StaticMaxSize:   DefaultStaticMaxSize,
		Downloader:      downloader.NewMemory(),
		Logger:          log,
		cache:           cache,
	}
}

// LoadFeed returns the parsed feed for a URL, downloading it if the
// cache has nothing fresh enough.
func (m *Manager) LoadFeed(ctx context.Context, url string, headers map[string]string) (*model.Feed, error) {
	cached, err := m.cache.ListFeeds(url)
	if err != nil {
		return nil, fmt.Errorf("listing cached feeds: %w", err)
	}

	if len(cached) > 0 && time.Since(cached[0].RetrievedAt) < m.RefreshInterval {
		return m.parseCached(url, cached[0])
	}

	body, err := m.Downloader.Get(ctx, url, headers, downloader.GetOptions{
		Timeout: m.StaticTimeout,
		MaxSize: m.StaticMaxSize,
	})
	if err != nil {
		if len(cached) > 0 {
			m.Logger.WithError(err).Warn("feed refresh failed, using cached copy")
			return m.parseCached(url, cached[0])
		}
		return nil, fmt.Errorf("downloading feed at %s: %w", url, err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(body))

	feed, err := parse.ParseStatic(body)
	if err != nil {
		// Broken download. An older cached archive may still parse.
		if len(cached) > 0 {
			m.Logger.WithError(err).Warn("downloaded feed is broken, using cached copy")
			return m.parseCached(url, cached[0])
		}
		return nil, fmt.Errorf("parsing: %w", err)
	}

	err = m.cache.WriteFeed(feedcache.Feed{
		URL:         url,
		SHA256:      hash,
		RetrievedAt: time.Now().UTC(),
	}, body)
	if err != nil {
		return nil, fmt.Errorf("caching feed: %w", err)
	}

	m.Logger.WithFields(logrus.Fields{
		"url":   url,
		"trips": len(feed.Trips),
	}).Info("feed refreshed")

	return feed, nil
}

func (m *Manager) parseCached(url string, meta feedcache.Feed) (*model.Feed, error) {
	body, err := m.cache.ReadFeed(url, meta.SHA256)
	if err != nil {
		return nil, fmt.Errorf("reading cached feed: %w", err)
	}
	feed, err := parse.ParseStatic(body)
	if err != nil {
		return nil, fmt.Errorf("parsing cached feed: %w", err)
	}
	return feed, nil
}
