package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

type GetOptions struct {
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration
}

// A thing capable of downloading a file, optionally with caching.
type Downloader interface {
	Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)
}

// Gets a file. Doesn't cache. Provided as convenience for
// implementing custom Downloaders.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, int64(options.MaxSize))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return body, nil
}

type memoryRecord struct {
	body        []byte
	retrievedAt time.Time
}

// Memory is a Downloader holding responses in an in-process map for
// the requested TTL.
type Memory struct {
	mutex sync.Mutex
	cache map[string]memoryRecord
}

func NewMemory() *Memory {
	return &Memory{cache: map[string]memoryRecord{}}
}

func (m *Memory) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {

	if options.Cache {
		m.mutex.Lock()
		rec, found := m.cache[url]
		m.mutex.Unlock()
		if found && time.Since(rec.retrievedAt) < options.CacheTTL {
			return rec.body, nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		m.mutex.Lock()
		m.cache[url] = memoryRecord{body: body, retrievedAt: time.Now()}
		m.mutex.Unlock()
	}

	return body, nil
}
