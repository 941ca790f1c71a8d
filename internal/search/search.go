// Package search is the entry point that turns a centroid and radius into
// an ordered set of heritage assets.
package search

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/aggregate"
	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/catchment"
	"github.com/sells-group/heritage-cli/internal/classify"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
	"github.com/sells-group/heritage-cli/pkg/geocode"
)

// ErrInvalidRadius is returned for a radius that is not a positive finite
// number within the configured maximum.
var ErrInvalidRadius = eris.New("search: invalid radius")

// Defaults applied when Options leaves a field unset.
const (
	DefaultRadiusKm    = 20.0
	DefaultMaxRadiusKm = 50.0
	DefaultTimeout     = 30 * time.Second
)

// Options configures a Service.
type Options struct {
	Endpoints   []arcgis.Endpoint
	MaxRadiusKm float64
	Timeout     time.Duration
}

// Result is one completed search.
type Result struct {
	QueryID  string             `json:"query_id"`
	Postcode string             `json:"postcode,omitempty"`
	Centroid geodesy.Coordinate `json:"centroid"`
	RadiusKm float64            `json:"radius_km"`
	Assets   []heritage.Asset   `json:"assets"`
}

// Service runs searches against a fixed endpoint set.
type Service struct {
	agg       *aggregate.Aggregator
	geocoder  geocode.Client
	endpoints []arcgis.Endpoint
	maxRadius float64
	timeout   time.Duration
}

// NewService creates a Service. geocoder may be nil when postcode searches
// are not needed.
func NewService(agg *aggregate.Aggregator, geocoder geocode.Client, opts Options) *Service {
	if len(opts.Endpoints) == 0 {
		opts.Endpoints = arcgis.DefaultEndpoints()
	}
	if opts.MaxRadiusKm <= 0 {
		opts.MaxRadiusKm = DefaultMaxRadiusKm
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		agg:       agg,
		geocoder:  geocoder,
		endpoints: opts.Endpoints,
		maxRadius: opts.MaxRadiusKm,
		timeout:   opts.Timeout,
	}
}

// Endpoints returns the configured endpoints.
func (s *Service) Endpoints() []arcgis.Endpoint {
	return append([]arcgis.Endpoint(nil), s.endpoints...)
}

// MaxRadiusKm returns the largest accepted radius.
func (s *Service) MaxRadiusKm() float64 {
	return s.maxRadius
}

// FindHeritageAssets returns every asset within radiusKm of centroid,
// nearest first. Endpoint failures shrink the result rather than failing it.
func (s *Service) FindHeritageAssets(ctx context.Context, centroid geodesy.Coordinate, radiusKm float64) ([]heritage.Asset, error) {
	res, err := s.Search(ctx, centroid, radiusKm)
	if err != nil {
		return nil, err
	}
	return res.Assets, nil
}

// Search is FindHeritageAssets returning the full Result.
func (s *Service) Search(ctx context.Context, centroid geodesy.Coordinate, radiusKm float64) (*Result, error) {
	if err := s.ValidateRadius(radiusKm); err != nil {
		return nil, err
	}
	if err := geodesy.ValidateGeographic(centroid); err != nil {
		return nil, eris.Wrap(err, "search: centroid")
	}

	queryID, ok := aggregate.QueryID(ctx)
	if !ok {
		queryID = uuid.NewString()
	}
	log := zap.L().With(
		zap.String("component", "search"),
		zap.String("query_id", queryID),
	)

	runCtx, cancel := context.WithTimeout(aggregate.WithQueryID(ctx, queryID), s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.agg.Aggregate(runCtx, s.endpoints, centroid, radiusKm)
	if err != nil {
		return nil, eris.Wrap(err, "search: aggregate")
	}

	assets := make([]heritage.Asset, 0, len(raw))
	for _, r := range raw {
		a, err := classify.Classify(r)
		if err != nil {
			log.Debug("search: skipping unclassifiable record",
				zap.String("source", r.Source),
				zap.Int("index", r.Index),
				zap.Error(err),
			)
			continue
		}
		assets = append(assets, a)
	}

	final, err := catchment.Finalize(assets, centroid, radiusKm)
	if err != nil {
		return nil, eris.Wrap(err, "search: finalize")
	}

	log.Info("search: complete",
		zap.Float64("lat", centroid.Lat()),
		zap.Float64("lng", centroid.Lng()),
		zap.Float64("radius_km", radiusKm),
		zap.Int("raw_records", len(raw)),
		zap.Int("assets", len(final)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{
		QueryID:  queryID,
		Centroid: centroid,
		RadiusKm: radiusKm,
		Assets:   final,
	}, nil
}

// FindByPostcode geocodes postcode and searches around it. An unknown
// postcode surfaces as a *geocode.NotFoundError.
func (s *Service) FindByPostcode(ctx context.Context, postcode string, radiusKm float64) (*Result, error) {
	if s.geocoder == nil {
		return nil, eris.New("search: no geocoder configured")
	}
	if err := s.ValidateRadius(radiusKm); err != nil {
		return nil, err
	}

	loc, err := s.geocoder.Geocode(ctx, postcode)
	if err != nil {
		return nil, eris.Wrapf(err, "search: geocode %q", postcode)
	}

	res, err := s.Search(ctx, geodesy.LatLng(loc.Latitude, loc.Longitude), radiusKm)
	if err != nil {
		return nil, err
	}
	res.Postcode = loc.Postcode
	return res, nil
}

// ValidateRadius checks radiusKm against the configured bounds.
func (s *Service) ValidateRadius(radiusKm float64) error {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return eris.Wrapf(ErrInvalidRadius, "search: radius %g must be positive", radiusKm)
	}
	if radiusKm > s.maxRadius {
		return eris.Wrapf(ErrInvalidRadius, "search: radius %g exceeds maximum %g", radiusKm, s.maxRadius)
	}
	return nil
}

// IsInvalidInput reports whether err was caused by a bad radius or centroid.
func IsInvalidInput(err error) bool {
	return eris.Is(err, ErrInvalidRadius) ||
		eris.Is(err, geodesy.ErrInvalidFrame) ||
		eris.Is(err, geodesy.ErrProjection)
}
