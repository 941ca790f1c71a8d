package arcgis

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/fetcher"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
	"github.com/sells-group/heritage-cli/internal/resilience"
)

// DefaultMaxRecords is the page size requested from every endpoint.
const DefaultMaxRecords = 2000

// Client queries ArcGIS FeatureServer layers. It is safe for concurrent use.
type Client struct {
	fetcher    fetcher.Fetcher
	maxRecords int
	retry      *resilience.RetryConfig
	breakers   *resilience.EndpointBreakers
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithFetcher sets the transport used for queries.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

// WithMaxRecords overrides the requested record count.
func WithMaxRecords(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRecords = n
		}
	}
}

// WithRetry retries transient endpoint failures. Without it every query
// makes exactly one attempt.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = &cfg
	}
}

// WithCircuitBreaker guards each endpoint with its own breaker.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breakers = resilience.NewEndpointBreakers(cfg)
	}
}

// NewClient creates a Client. Without WithFetcher it uses an HTTPFetcher
// with default options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		maxRecords: DefaultMaxRecords,
		log:        zap.L().With(zap.String("component", "arcgis")),
	}
	for _, o := range opts {
		o(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	return c
}

// Query returns the records ep holds inside the square envelope around
// centroid. Endpoint failures are logged and yield an empty slice. Records
// without a usable coordinate are dropped.
func (c *Client) Query(ctx context.Context, ep Endpoint, centroid geodesy.Coordinate, radiusKm float64) []heritage.RawRecord {
	start := time.Now()
	log := c.log.With(zap.String("endpoint", ep.Name))

	records, err := c.guardedFetch(ctx, ep, centroid, radiusKm)
	if err != nil {
		log.Warn("arcgis: endpoint failure",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return []heritage.RawRecord{}
	}

	kept := records[:0]
	dropped := 0
	for _, r := range records {
		if _, ok := heritage.NativeCoordinate(r); !ok {
			dropped++
			log.Debug("arcgis: dropping record without coordinate",
				zap.Strings("attributes", r.Attributes.Keys()),
			)
			continue
		}
		kept = append(kept, r)
	}

	log.Debug("arcgis: endpoint query complete",
		zap.Int("records", len(kept)),
		zap.Int("dropped_no_coordinate", dropped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return kept
}

// CircuitStates reports the breaker state per endpoint. It is empty when
// breakers are disabled.
func (c *Client) CircuitStates() map[string]resilience.CircuitState {
	if c.breakers == nil {
		return map[string]resilience.CircuitState{}
	}
	return c.breakers.States()
}

func (c *Client) guardedFetch(ctx context.Context, ep Endpoint, centroid geodesy.Coordinate, radiusKm float64) ([]heritage.RawRecord, error) {
	call := func(ctx context.Context) ([]heritage.RawRecord, error) {
		return c.fetch(ctx, ep, centroid, radiusKm)
	}
	if c.retry != nil {
		cfg := *c.retry
		if cfg.OnRetry == nil {
			cfg.OnRetry = resilience.RetryLogger(ep.Name)
		}
		inner := call
		call = func(ctx context.Context) ([]heritage.RawRecord, error) {
			return resilience.DoVal(ctx, cfg, inner)
		}
	}
	if c.breakers != nil {
		return resilience.ExecuteVal(ctx, c.breakers.Get(ep.Name), call)
	}
	return call(ctx)
}

// fetch performs a single envelope query and decodes the response.
func (c *Client) fetch(ctx context.Context, ep Endpoint, centroid geodesy.Coordinate, radiusKm float64) ([]heritage.RawRecord, error) {
	params, err := c.queryParams(centroid, radiusKm)
	if err != nil {
		return nil, err
	}

	body, err := c.fetcher.Get(ctx, ep.URL, params)
	if err != nil {
		return nil, eris.Wrapf(err, "arcgis: query %s", ep.Name)
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[queryResponse](body)
	if err != nil {
		return nil, eris.Wrapf(err, "arcgis: decode %s response", ep.Name)
	}
	if resp.Error != nil {
		svcErr := eris.Errorf("arcgis: %s returned error %d: %s", ep.Name, resp.Error.Code, resp.Error.Message)
		if resilience.IsTransientHTTPStatus(resp.Error.Code) {
			return nil, resilience.NewTransientError(svcErr, resp.Error.Code)
		}
		return nil, svcErr
	}
	if resp.Features == nil {
		return nil, eris.Errorf("arcgis: %s response has no features", ep.Name)
	}
	if resp.ExceededTransferLimit {
		c.log.Info("arcgis: transfer limit exceeded, results truncated",
			zap.String("endpoint", ep.Name),
			zap.Int("max_records", c.maxRecords),
		)
	}

	features := *resp.Features
	records := make([]heritage.RawRecord, 0, len(features))
	for _, f := range features {
		records = append(records, heritage.RawRecord{
			Attributes:   heritage.NewAttributes(f.Attributes),
			Geometry:     f.Geometry,
			Source:       ep.Name,
			CategoryHint: ep.CategoryHint,
		})
	}
	return records, nil
}

type spatialReference struct {
	WKID int `json:"wkid"`
}

type envelope struct {
	XMin             float64          `json:"xmin"`
	YMin             float64          `json:"ymin"`
	XMax             float64          `json:"xmax"`
	YMax             float64          `json:"ymax"`
	SpatialReference spatialReference `json:"spatialReference"`
}

// queryParams builds the envelope query for the square of half-width
// radiusKm around centroid in the projected frame.
func (c *Client) queryParams(centroid geodesy.Coordinate, radiusKm float64) (url.Values, error) {
	bounds, err := geodesy.Envelope(centroid, radiusKm*1000)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: build envelope")
	}
	srid := strconv.Itoa(geodesy.Projected.SRID())
	geometry, err := json.Marshal(envelope{
		XMin:             bounds.Min(0),
		YMin:             bounds.Min(1),
		XMax:             bounds.Max(0),
		YMax:             bounds.Max(1),
		SpatialReference: spatialReference{WKID: geodesy.Projected.SRID()},
	})
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: encode envelope")
	}

	limit := strconv.Itoa(c.maxRecords)
	return url.Values{
		"f":                 {"json"},
		"where":             {"1=1"},
		"outFields":         {"*"},
		"geometry":          {string(geometry)},
		"geometryType":      {"esriGeometryEnvelope"},
		"inSR":              {srid},
		"spatialRel":        {"esriSpatialRelIntersects"},
		"returnGeometry":    {"true"},
		"outSR":             {srid},
		"resultRecordCount": {limit},
		"maxRecordCount":    {limit},
		"resultOffset":      {"0"},
	}, nil
}
