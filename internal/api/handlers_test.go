package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/aggregate"
	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
	"github.com/sells-group/heritage-cli/internal/search"
	"github.com/sells-group/heritage-cli/pkg/geocode"
)

var stonehenge = geodesy.LatLng(51.1789, -1.8262)

type stubQuerier map[string][]heritage.RawRecord

func (s stubQuerier) Query(_ context.Context, ep arcgis.Endpoint, _ geodesy.Coordinate, _ float64) []heritage.RawRecord {
	return s[ep.Name]
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, postcode string) (*geocode.Result, error) {
	pc, err := geocode.NormalizePostcode(postcode)
	if err != nil {
		return nil, err
	}
	if pc != "SP4 7DE" {
		return nil, &geocode.NotFoundError{Postcode: pc}
	}
	return &geocode.Result{Postcode: pc, Latitude: stonehenge.Lat(), Longitude: stonehenge.Lng()}, nil
}

func (stubGeocoder) Nearest(_ context.Context, _, _ float64) (*geocode.Result, error) {
	return &geocode.Result{Postcode: "SP4 7DE"}, nil
}

func monumentNorth(t *testing.T, kmNorth float64, entry float64) heritage.RawRecord {
	t.Helper()
	p, err := geodesy.ToProjected(geodesy.LatLng(stonehenge.Lat()+kmNorth/111.195, stonehenge.Lng()))
	require.NoError(t, err)
	x, y := p.Easting(), p.Northing()
	return heritage.RawRecord{
		Attributes: heritage.NewAttributes(map[string]any{
			"ListEntry":               entry,
			"Name":                    "Bowl barrow",
			"ScheduledMonumentNumber": "10390",
		}),
		Geometry: &heritage.Geometry{X: &x, Y: &y},
		Source:   "Scheduled_Monuments",
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	q := stubQuerier{
		"Scheduled_Monuments": {monumentNorth(t, 0.4, 1010140), monumentNorth(t, 3, 1010141)},
	}
	svc := search.NewService(aggregate.New(q, 0), stubGeocoder{}, search.Options{
		Endpoints: []arcgis.Endpoint{{Name: "Scheduled_Monuments", URL: "https://example.test/sm", CategoryHint: "Scheduled Monument"}},
		Timeout:   5 * time.Second,
	})
	return NewServer(svc, Options{Port: 8080}, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAssets_LatLng(t *testing.T) {
	w := do(t, newTestServer(t), "/api/v1/assets?lat=51.1789&lng=-1.8262&radius_km=5")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var out struct {
		QueryID  string           `json:"query_id"`
		RadiusKm float64          `json:"radius_km"`
		Assets   []heritage.Asset `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.NotEmpty(t, out.QueryID)
	assert.InDelta(t, 5.0, out.RadiusKm, 1e-9)
	require.Len(t, out.Assets, 2)
	assert.Equal(t, "nhle_1010140", out.Assets[0].ID)
	assert.Less(t, out.Assets[0].DistanceKm, out.Assets[1].DistanceKm)
}

func TestAssets_RadiusFilters(t *testing.T) {
	w := do(t, newTestServer(t), "/api/v1/assets?lat=51.1789&lng=-1.8262&radius_km=1")
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Assets []heritage.Asset `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Assets, 1)
}

func TestAssets_GeoJSON(t *testing.T) {
	w := do(t, newTestServer(t), "/api/v1/assets?postcode=sp47de&format=geojson&radius_km=5")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
}

func TestAssets_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing location", "/api/v1/assets", http.StatusBadRequest},
		{"bad lat", "/api/v1/assets?lat=north&lng=-1.8", http.StatusBadRequest},
		{"bad radius", "/api/v1/assets?lat=51.1&lng=-1.8&radius_km=wide", http.StatusBadRequest},
		{"negative radius", "/api/v1/assets?lat=51.1&lng=-1.8&radius_km=-1", http.StatusBadRequest},
		{"radius above max", "/api/v1/assets?lat=51.1&lng=-1.8&radius_km=500", http.StatusBadRequest},
		{"latitude out of range", "/api/v1/assets?lat=95&lng=-1.8", http.StatusBadRequest},
		{"bad format", "/api/v1/assets?lat=51.1&lng=-1.8&format=kml", http.StatusBadRequest},
		{"unknown postcode", "/api/v1/assets?postcode=SW1A1AA", http.StatusNotFound},
		{"malformed postcode", "/api/v1/assets?postcode=nope", http.StatusNotFound},
	}
	h := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.target)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var out map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestAssessment(t *testing.T) {
	w := do(t, newTestServer(t), "/api/v1/assessment?postcode=SP4%207DE&radius_km=5")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Postcode           string   `json:"postcode"`
		Total              int      `json:"total"`
		OverallSensitivity string   `json:"overall_sensitivity"`
		OverallRisk        string   `json:"overall_risk"`
		Recommendations    []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "SP4 7DE", out.Postcode)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "high", out.OverallSensitivity)
	assert.Equal(t, "high", out.OverallRisk)
	assert.Contains(t, out.Recommendations, "Scheduled Monument Consent will be required for any works affecting scheduled monuments")
}

func TestEndpoints(t *testing.T) {
	w := do(t, newTestServer(t), "/api/v1/endpoints")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"endpoints":[{"name":"Scheduled_Monuments","url":"https://example.test/sm","category_hint":"Scheduled Monument"}]}`,
		w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/assets", nil)
	r.Header.Set("Origin", "https://maps.example.org")
	r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(&geocode.NotFoundError{Postcode: "X"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(search.ErrInvalidRadius))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.DeadlineExceeded))
}
