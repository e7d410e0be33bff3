package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPFetcher implements Fetcher using net/http with retry and rate
// limiting. The government hosts serving the reference files are shared
// infrastructure; one conservative limiter covers all of them.
type HTTPFetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.TimeoutSec == 0 {
		opts.TimeoutSec = 60
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "gfc-explorer/1.0"
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: time.Duration(opts.TimeoutSec) * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(5, 5),
	}
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("retryable http status",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
		}

		return resp, nil
	}
	return nil, eris.Wrapf(lastErr, "fetcher: exhausted %d attempts for %s", f.opts.MaxRetries, req.URL.String())
}

// backoff sleeps with exponential backoff plus jitter, respecting ctx.
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Duration(float64(time.Second) * math.Pow(2, float64(attempt)))
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	d := base + time.Duration(rand.Int64N(int64(base)/2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: build request %s", rawURL)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL into the given path. Returns bytes written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	rc, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck

	return saveTo(path, rc)
}
