package main

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/heritage-cli/internal/aggregate"
	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/config"
	"github.com/sells-group/heritage-cli/internal/fetcher"
	"github.com/sells-group/heritage-cli/internal/search"
	"github.com/sells-group/heritage-cli/pkg/geocode"
)

// searchEnv holds the clients and service shared by the search, assess and
// serve commands.
type searchEnv struct {
	Service  *search.Service
	Geocoder geocode.Client
}

// initSearch validates the config for mode and wires the fetcher, endpoint
// client, aggregator, geocoder and search service.
func initSearch(c *config.Config, mode string) (*searchEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	endpoints, err := c.ArcGIS.ResolveEndpoints()
	if err != nil {
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.ArcGIS.UserAgent,
		Timeout:   time.Duration(c.ArcGIS.TimeoutSecs) * time.Second,
		RateLimit: rate.Limit(c.ArcGIS.RateLimitRPS),
	})
	client := arcgis.NewClient(append([]arcgis.Option{arcgis.WithFetcher(f)}, c.ArcGIS.ClientOptions()...)...)

	gc := geocode.NewClient(
		geocode.WithBaseURL(c.Geocode.BaseURL),
		geocode.WithRateLimit(c.Geocode.RateLimitRPS),
		geocode.WithTimeout(time.Duration(c.Geocode.TimeoutSecs)*time.Second),
	)

	svc := search.NewService(aggregate.New(client, c.Search.Concurrency), gc, search.Options{
		Endpoints:   endpoints,
		MaxRadiusKm: c.Search.MaxRadiusKm,
		Timeout:     c.Search.Timeout(),
	})

	return &searchEnv{Service: svc, Geocoder: gc}, nil
}
