package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/heritage-cli/internal/aggregate"
	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
	"github.com/sells-group/heritage-cli/pkg/geocode"
)

var stonehenge = geodesy.LatLng(51.1789, -1.8262)

// stubQuerier serves canned records per endpoint name.
type stubQuerier map[string][]heritage.RawRecord

func (s stubQuerier) Query(_ context.Context, ep arcgis.Endpoint, _ geodesy.Coordinate, _ float64) []heritage.RawRecord {
	return s[ep.Name]
}

// projectedRecord places a record kmNorth/kmEast of stonehenge using the
// projected frame, as the endpoints do.
func projectedRecord(t *testing.T, source string, kmNorth, kmEast float64, attrs map[string]any) heritage.RawRecord {
	t.Helper()
	p, err := geodesy.ToProjected(geodesy.LatLng(stonehenge.Lat()+kmNorth/111.195, stonehenge.Lng()))
	require.NoError(t, err)
	x, y := p.Easting()+kmEast*1000, p.Northing()
	return heritage.RawRecord{
		Attributes: heritage.NewAttributes(attrs),
		Geometry:   &heritage.Geometry{X: &x, Y: &y},
		Source:     source,
	}
}

func newService(q aggregate.Querier, gc geocode.Client, names ...string) *Service {
	eps := make([]arcgis.Endpoint, 0, len(names))
	for _, n := range names {
		eps = append(eps, arcgis.Endpoint{Name: n, URL: "https://example.test/" + n})
	}
	return NewService(aggregate.New(q, 0), gc, Options{Endpoints: eps, Timeout: 5 * time.Second})
}

func TestFindHeritageAssets_StonehengeScenario(t *testing.T) {
	q := stubQuerier{
		"Scheduled_Monuments": {
			projectedRecord(t, "Scheduled_Monuments", 2.1, 0, map[string]any{
				"ListEntry":               1010140.0,
				"Name":                    "Bowl barrow 2km north",
				"ScheduledMonumentNumber": "10390",
			}),
			// Inside the query square but outside the 20 km circle.
			projectedRecord(t, "Scheduled_Monuments", 18, 18, map[string]any{"ListEntry": 1000002.0}),
		},
		"Listed_Buildings": {
			projectedRecord(t, "Listed_Buildings", 25, 0, map[string]any{"ListEntry": 1000003.0, "Grade": "II"}),
		},
	}

	assets, err := newService(q, nil, "Scheduled_Monuments", "Listed_Buildings").
		FindHeritageAssets(context.Background(), stonehenge, 20)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	a := assets[0]
	assert.Equal(t, "nhle_1010140", a.ID)
	assert.Equal(t, heritage.CategoryMonument, a.Category)
	assert.Equal(t, heritage.SignificanceNational, a.Significance)
	assert.InDelta(t, 2.1, a.DistanceKm, 0.05)
	assert.True(t, a.Location.IsGeographic())
}

func TestFindHeritageAssets_OrderAndDedupAcrossEndpoints(t *testing.T) {
	q := stubQuerier{
		"a": {
			projectedRecord(t, "a", 5, 0, map[string]any{"ListEntry": 1.0}),
			projectedRecord(t, "a", 1, 0, map[string]any{"ListEntry": 2.0}),
		},
		"b": {
			projectedRecord(t, "b", 3, 0, map[string]any{"ListEntry": 1.0}),
			projectedRecord(t, "b", 0.5, 0, map[string]any{}),
		},
	}

	assets, err := newService(q, nil, "a", "b").FindHeritageAssets(context.Background(), stonehenge, 10)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, "nhle_b_idx_3", assets[0].ID)
	assert.Equal(t, "nhle_2", assets[1].ID)
	assert.Equal(t, "nhle_1", assets[2].ID)
	assert.InDelta(t, 3.0, assets[2].DistanceKm, 0.05)
	for i := 1; i < len(assets); i++ {
		assert.LessOrEqual(t, assets[i-1].DistanceKm, assets[i].DistanceKm)
	}
}

func TestFindHeritageAssets_NoResultsIsEmpty(t *testing.T) {
	assets, err := newService(stubQuerier{}, nil, "a").FindHeritageAssets(context.Background(), stonehenge, 5)
	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestSearch_InvalidInput(t *testing.T) {
	s := newService(stubQuerier{}, nil, "a")
	tests := []struct {
		name     string
		centroid geodesy.Coordinate
		radius   float64
		sentinel error
	}{
		{"zero radius", stonehenge, 0, ErrInvalidRadius},
		{"negative radius", stonehenge, -3, ErrInvalidRadius},
		{"nan radius", stonehenge, math.NaN(), ErrInvalidRadius},
		{"radius over max", stonehenge, 51, ErrInvalidRadius},
		{"projected centroid", geodesy.EastingNorthing(412000, 142000), 5, geodesy.ErrInvalidFrame},
		{"latitude out of range", geodesy.LatLng(91, 0), 5, geodesy.ErrProjection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Search(context.Background(), tt.centroid, tt.radius)
			require.Error(t, err)
			assert.True(t, eris.Is(err, tt.sentinel), err.Error())
			assert.True(t, IsInvalidInput(err))
		})
	}
}

func TestSearch_UsesQueryIDFromContext(t *testing.T) {
	ctx := aggregate.WithQueryID(context.Background(), "fixed-id")
	res, err := newService(stubQuerier{}, nil, "a").Search(ctx, stonehenge, 5)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", res.QueryID)

	res, err = newService(stubQuerier{}, nil, "a").Search(context.Background(), stonehenge, 5)
	require.NoError(t, err)
	assert.Len(t, res.QueryID, 36)
}

type stubGeocoder struct {
	result *geocode.Result
	err    error
}

func (s stubGeocoder) Geocode(context.Context, string) (*geocode.Result, error) {
	return s.result, s.err
}

func (s stubGeocoder) Nearest(context.Context, float64, float64) (*geocode.Result, error) {
	return s.result, s.err
}

func TestFindByPostcode(t *testing.T) {
	gc := stubGeocoder{result: &geocode.Result{Postcode: "SP4 7DE", Latitude: stonehenge.Lat(), Longitude: stonehenge.Lng()}}
	q := stubQuerier{"a": {projectedRecord(t, "a", 1, 0, map[string]any{"ListEntry": 9.0})}}

	res, err := newService(q, gc, "a").FindByPostcode(context.Background(), "sp47de", 5)
	require.NoError(t, err)
	assert.Equal(t, "SP4 7DE", res.Postcode)
	assert.Equal(t, 5.0, res.RadiusKm)
	assert.Len(t, res.Assets, 1)
	assert.InDelta(t, stonehenge.Lat(), res.Centroid.Lat(), 1e-12)
}

func TestFindByPostcode_NotFound(t *testing.T) {
	gc := stubGeocoder{err: &geocode.NotFoundError{Postcode: "ZZ9 9ZZ"}}
	_, err := newService(stubQuerier{}, gc, "a").FindByPostcode(context.Background(), "ZZ9 9ZZ", 5)
	require.Error(t, err)

	var nf *geocode.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ZZ9 9ZZ", nf.Postcode)
	assert.Contains(t, err.Error(), "ZZ9 9ZZ")
}

func TestFindByPostcode_NoGeocoder(t *testing.T) {
	_, err := newService(stubQuerier{}, nil, "a").FindByPostcode(context.Background(), "SP4 7DE", 5)
	assert.Error(t, err)
}

func TestNewService_Defaults(t *testing.T) {
	s := NewService(aggregate.New(stubQuerier{}, 0), nil, Options{})
	assert.Len(t, s.Endpoints(), 5)
	assert.Equal(t, DefaultMaxRadiusKm, s.MaxRadiusKm())
	assert.NoError(t, s.ValidateRadius(DefaultRadiusKm))
}
