package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit is the initial requests-per-second allowance per host.
	RateLimit rate.Limit
	Burst     int
	// Client overrides the default HTTP client (tests, custom transports).
	Client *http.Client
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 1.2
	if newRate > a.maxRate {
		newRate = a.maxRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 0.5
	if newRate < a.minRate {
		newRate = a.minRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(newRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher using net/http with per-host adaptive rate
// limiting. It makes exactly one attempt per call.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "heritage-cli/1.0"
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = max(int(opts.RateLimit), 1)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
	}
}

// limiterFor returns the adaptive limiter for the URL's host, creating it on first use.
func (f *HTTPFetcher) limiterFor(u *url.URL) *AdaptiveLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[u.Host]
	if !ok {
		lim = NewAdaptiveLimiter(f.opts.RateLimit, f.opts.Burst)
		f.limiters[u.Host] = lim
	}
	return lim
}

// Get fetches rawURL with params and returns the response body.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, params url.Values) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	lim := f.limiterFor(u)
	if err := lim.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", redact(u))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		lim.OnRateLimit()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: redact(u)}
	}

	lim.OnSuccess()
	return resp.Body, nil
}

// redact drops the query string, which can carry large geometry payloads.
func redact(u *url.URL) string {
	s := u.String()
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
