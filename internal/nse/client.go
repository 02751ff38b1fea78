package nse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"fnocli/internal/dataprocessing"
	"fnocli/internal/files"
	"fnocli/internal/infrastructure"
)

// ErrNotPublished is returned when the archive has no report for a date,
// which is the case for weekends and exchange holidays.
var ErrNotPublished = errors.New("report not published")

// Options configures the archive client
type Options struct {
	HomeURL    string
	ArchiveURL string
	Timeout    time.Duration
	// Interval is the minimum spacing between archive requests
	Interval time.Duration
	// MaxElapsed bounds the retries of a single download
	MaxElapsed time.Duration
}

// DefaultOptions returns the settings used against the live archive
func DefaultOptions() Options {
	return Options{
		HomeURL:    DefaultHomeURL,
		ArchiveURL: DefaultArchiveURL,
		Timeout:    30 * time.Second,
		Interval:   20 * time.Second,
		MaxElapsed: 2 * time.Minute,
	}
}

// StatusError reports a non-200 archive response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client downloads daily reports from the NSE archive. Requests are rate
// limited and retried with exponential backoff; a cookie jar carries the
// session established by Bootstrap.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	opts    Options
	metrics *infrastructure.StrengthMetrics
	logger  *slog.Logger
}

// NewClient creates an archive client. A nil logger falls back to slog.Default().
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	def := DefaultOptions()
	if opts.HomeURL == "" {
		opts.HomeURL = def.HomeURL
	}
	if opts.ArchiveURL == "" {
		opts.ArchiveURL = def.ArchiveURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = def.MaxElapsed
	}
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout, Jar: jar},
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
		logger:  logger,
	}, nil
}

// WithMetrics counts downloads by outcome on m
func (c *Client) WithMetrics(m *infrastructure.StrengthMetrics) *Client {
	c.metrics = m
	return c
}

// Bootstrap visits the home page so the jar holds the session cookies the
// archive expects.
func (c *Client) Bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.HomeURL, nil)
	if err != nil {
		return fmt.Errorf("create home request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("visit home page: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: c.opts.HomeURL, StatusCode: resp.StatusCode}
	}

	c.logger.InfoContext(ctx, "established archive session",
		"home_url", c.opts.HomeURL,
		"cookies", len(resp.Cookies()),
	)
	return nil
}

// SetCookies seeds the jar, e.g. with cookies taken from a browser session
func (c *Client) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse cookie url: %w", err)
	}
	c.http.Jar.SetCookies(u, cookies)
	return nil
}

// Fetch downloads url and returns the body. 404 is permanent and reported
// as ErrNotPublished; other failures are retried until MaxElapsed.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		setBrowserHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%s: %w", rawURL, ErrNotPublished))
		case resp.StatusCode != http.StatusOK:
			return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.opts.MaxElapsed

	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "archive request failed, retrying",
			"url", rawURL,
			"attempt", attempt,
			"wait", wait.String(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

// DownloadParticipant saves the participant OI report for date into dir and
// returns its path. An existing file is kept and not fetched again.
func (c *Client) DownloadParticipant(ctx context.Context, date time.Time, dir string) (string, bool, error) {
	dest := filepath.Join(dir, dataprocessing.ParticipantFileName(date))
	return c.download(ctx, ParticipantURL(c.opts.ArchiveURL, date), dest)
}

// DownloadFIIStats saves the FII statistics workbook for date into dir
func (c *Client) DownloadFIIStats(ctx context.Context, date time.Time, dir string) (string, bool, error) {
	dest := filepath.Join(dir, FIIStatsFileName(date))
	return c.download(ctx, FIIStatsURL(c.opts.ArchiveURL, date), dest)
}

// DownloadIndexClose saves the daily index snapshot for date into dir
func (c *Client) DownloadIndexClose(ctx context.Context, date time.Time, dir string) (string, bool, error) {
	dest := filepath.Join(dir, dataprocessing.IndexCloseFileName(date))
	return c.download(ctx, IndexCloseURL(c.opts.ArchiveURL, date), dest)
}

func (c *Client) download(ctx context.Context, rawURL, dest string) (string, bool, error) {
	if files.FileExists(dest) {
		c.logger.DebugContext(ctx, "report already downloaded", "file", filepath.Base(dest))
		return dest, false, nil
	}

	body, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return "", false, err
	}

	if err := files.WriteFileAtomic(dest, body); err != nil {
		return "", false, err
	}

	c.logger.InfoContext(ctx, "file downloaded successfully",
		"file", filepath.Base(dest),
		"size_bytes", len(body),
	)
	return dest, true, nil
}
