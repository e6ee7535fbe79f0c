package fetch

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/parsing"
)

// Client fetches announcement pages over HTTP with an optional per-day disk
// cache. Announcement pages change daily at most, so a cache entry is keyed by
// service, current date and the URL hash.
type Client struct {
	http     *http.Client
	cacheDir string
	clock    clockwork.Clock
	logger   *slog.Logger
}

var _ parsing.Fetcher = (*Client)(nil)

// NewClient builds a fetcher. An empty cacheDir disables caching; verifySSL
// exists because some municipal sites serve broken certificate chains.
func NewClient(cacheDir string, verifySSL bool, clock clockwork.Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !verifySSL},
	}
	return &Client{
		http:     &http.Client{Timeout: 20 * time.Second, Transport: transport},
		cacheDir: cacheDir,
		clock:    clock,
		logger:   logger,
	}
}

// Fetch returns the page body for the URL, serving today's cached copy when
// one exists.
func (c *Client) Fetch(ctx context.Context, service domain.Service, pageURL string) (string, error) {
	cachePath := c.cachePath(service, pageURL)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			c.logger.Debug("cache hit", "service", service, "path", cachePath)
			return string(data), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ShutdownScanner/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	if cachePath != "" {
		if err := os.MkdirAll(c.cacheDir, 0o755); err == nil {
			err = os.WriteFile(cachePath, body, 0o644)
		}
		if err != nil {
			c.logger.Warn("cannot write cache file", "path", cachePath, "error", err)
		}
	}
	return string(body), nil
}

func (c *Client) cachePath(service domain.Service, pageURL string) string {
	if c.cacheDir == "" {
		return ""
	}
	day := c.clock.Now().UTC().Format("2006-01-02")
	name := fmt.Sprintf("%s_%s_%x.html", strings.ToLower(string(service)), day, sha256.Sum256([]byte(pageURL)))
	return filepath.Join(c.cacheDir, name)
}
