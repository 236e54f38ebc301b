package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// Config for the receipt image downloader. The monitoring portal serves
// one JPEG per fiscal ID and throttles aggressive clients, hence the
// limiter and the retry budget.
type Config struct {
	BaseURL     string        // default e-kassa documents endpoint
	Timeout     time.Duration // per-request
	MaxAttempts int           // total attempts including the first
	Backoff     time.Duration // initial backoff, doubled per retry
	RequestsPer time.Duration // politeness interval between requests
}

const defaultBaseURL = "https://monitoring.e-kassa.gov.az/pks-monitoring/2.0.0/documents/"

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.RequestsPer <= 0 {
		cfg.RequestsPer = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestsPer), 1),
		log:     logger,
	}
}

// Fetch downloads the receipt image for one fiscal ID, retrying transient
// failures (connection errors, 429, 5xx) with exponential backoff.
func (c *Client) Fetch(ctx context.Context, fiscalID string) ([]byte, error) {
	url := c.cfg.BaseURL + fiscalID

	var lastErr error
	backoff := c.cfg.Backoff
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		data, retryable, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.log.Warn("fetch.retry",
			"fiscal_id", fiscalID, "attempt", attempt, "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("fetch %s: %w", fiscalID, lastErr)
}

func (c *Client) get(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "image/jpeg,image/png,*/*")
	req.Header.Set("User-Lang", "az")
	req.Header.Set("User-Time-Zone", "Asia/Baku")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("read body: %w", err)
		}
		return data, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}
}

// Download fetches one receipt into dir as <fiscalID>.jpeg, skipping files
// that already exist so interrupted runs resume cheaply.
func (c *Client) Download(ctx context.Context, fiscalID, dir string) (string, error) {
	path := filepath.Join(dir, fiscalID+".jpeg")
	if _, err := os.Stat(path); err == nil {
		c.log.Debug("fetch.skip_existing", "fiscal_id", fiscalID, "path", path)
		return path, nil
	}
	data, err := c.Fetch(ctx, fiscalID)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	c.log.Info("fetch.ok", "fiscal_id", fiscalID, "bytes", len(data))
	return path, nil
}
