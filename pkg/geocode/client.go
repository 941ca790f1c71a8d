// Package geocode resolves UK postcodes to WGS84 coordinates via postcodes.io.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the postcodes.io lookup collection.
const DefaultBaseURL = "https://api.postcodes.io/postcodes"

// Client geocodes postcodes.
type Client interface {
	// Geocode resolves a postcode. An unknown or malformed postcode returns
	// a *NotFoundError.
	Geocode(ctx context.Context, postcode string) (*Result, error)

	// Nearest returns the postcode closest to a WGS84 point.
	Nearest(ctx context.Context, lat, lng float64) (*Result, error)
}

// Result holds the geocoding output for a postcode.
type Result struct {
	Postcode      string  `json:"postcode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Country       string  `json:"country,omitempty"`
	Region        string  `json:"region,omitempty"`
	AdminDistrict string  `json:"admin_district,omitempty"`
	Parish        string  `json:"parish,omitempty"`
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithBaseURL points the client at another postcodes.io deployment.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout. It has no effect when combined
// with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(g *geocoder) {
		if d > 0 {
			g.timeout = d
		}
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a new geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		baseURL: DefaultBaseURL,
		timeout: 10 * time.Second,
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: g.timeout}
	}
	return g
}
