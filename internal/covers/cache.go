// Package covers keeps a local copy of catalog cover images so the API can
// serve them without hitting the catalog on every request.
package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

const maxCoverBytes = 10 << 20

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client

	// one fetch per target file at a time
	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		inflight: make(map[string]*sync.Mutex),
	}, nil
}

// GetCover returns the cached cover for a book, fetching it when absent.
// An empty coverURL yields an empty path and no error.
func (c *Cache) GetCover(ctx context.Context, workKey, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}
	workKey = entities.CleanWorkKey(workKey)
	if workKey == "" {
		return "", fmt.Errorf("empty work key")
	}

	cachePath := filepath.Join(c.cacheDir, coverFilename(workKey, coverURL))

	lock := c.lockFor(cachePath)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// Cached returns the path of an already cached cover without fetching.
func (c *Cache) Cached(workKey, coverURL string) (string, bool) {
	workKey = entities.CleanWorkKey(workKey)
	if workKey == "" || coverURL == "" {
		return "", false
	}
	cachePath := filepath.Join(c.cacheDir, coverFilename(workKey, coverURL))
	if _, err := os.Stat(cachePath); err != nil {
		return "", false
	}
	return cachePath, true
}

// InvalidateCover removes every cached cover for a book.
func (c *Cache) InvalidateCover(workKey string) error {
	prefix := coverPrefix(entities.CleanWorkKey(workKey))
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.cacheDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

func (c *Cache) lockFor(path string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.inflight[path]
	if !ok {
		lock = &sync.Mutex{}
		c.inflight[path] = lock
	}
	return lock
}

func coverPrefix(workKey string) string {
	return "cover_" + sanitizeKey(workKey) + "_"
}

// coverFilename generates a unique filename based on work key and URL hash.
func coverFilename(workKey, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("%s%x.jpg", coverPrefix(workKey), hash[:8])
}

// sanitizeKey keeps keys usable as file name fragments.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '-'
	}, key)
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "ReadingLog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, ".cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > maxCoverBytes {
		return fmt.Errorf("cover exceeds %d bytes", maxCoverBytes)
	}
	if n == 0 {
		return fmt.Errorf("empty cover response")
	}

	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
