package geodesy

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransverseMercator_OrdnanceSurveyWorkedExample(t *testing.T) {
	// Caister Water Tower, OSGB36 52°39'27.2531"N 1°43'4.5177"E.
	lat := radians(52 + 39.0/60 + 27.2531/3600)
	lng := radians(1 + 43.0/60 + 4.5177/3600)

	e, n := transverseMercator(lat, lng)
	assert.InDelta(t, 651409.903, e, 0.01)
	assert.InDelta(t, 313177.270, n, 0.01)

	backLat, backLng := inverseTransverseMercator(e, n)
	assert.InDelta(t, lat, backLat, 1e-8)
	assert.InDelta(t, lng, backLng, 1e-8)
}

func TestToProjected_Stonehenge(t *testing.T) {
	p, err := ToProjected(LatLng(51.178882, -1.826215))
	require.NoError(t, err)
	assert.Equal(t, Projected, p.Frame)
	// SU 12245 42185.
	assert.InDelta(t, 412245, p.Easting(), 100)
	assert.InDelta(t, 142185, p.Northing(), 100)
}

func TestRoundTrip_WithinOneMetre(t *testing.T) {
	for lat := 50.0; lat <= 58.5; lat += 0.75 {
		for lng := -6.0; lng <= 1.5; lng += 0.5 {
			in := LatLng(lat, lng)
			p, err := ToProjected(in)
			require.NoError(t, err)

			out, err := ToGeographic(p)
			require.NoError(t, err)
			require.Equal(t, Geographic, out.Frame)

			d, err := DistanceKm(in, out)
			require.NoError(t, err)
			assert.Less(t, d*1000, 1.0, "round trip drift at %s", in)
		}
	}
}

func TestToProjected_Errors(t *testing.T) {
	tests := []struct {
		name   string
		in     Coordinate
		target error
	}{
		{name: "nan latitude", in: LatLng(math.NaN(), 0), target: ErrProjection},
		{name: "infinite longitude", in: LatLng(51, math.Inf(1)), target: ErrProjection},
		{name: "latitude above 90", in: LatLng(91, 0), target: ErrProjection},
		{name: "longitude below -180", in: LatLng(51, -181), target: ErrProjection},
		{name: "projected input", in: EastingNorthing(400000, 100000), target: ErrInvalidFrame},
		{name: "zero frame", in: Coordinate{X: 1, Y: 1}, target: ErrInvalidFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToProjected(tt.in)
			require.Error(t, err)
			assert.True(t, eris.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestToGeographic_Errors(t *testing.T) {
	_, err := ToGeographic(LatLng(51, -1))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidFrame))

	_, err = ToGeographic(EastingNorthing(math.NaN(), 100000))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrProjection))
}

func TestDistanceKm(t *testing.T) {
	london := LatLng(51.5074, -0.1278)
	paris := LatLng(48.8566, 2.3522)

	d, err := DistanceKm(london, paris)
	require.NoError(t, err)
	assert.InDelta(t, 343.5, d, 1.0)

	zero, err := DistanceKm(london, london)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	points := []Coordinate{
		LatLng(51.1789, -1.8262),
		LatLng(55.9533, -3.1883),
		LatLng(50.0657, -5.7132),
		LatLng(-33.8688, 151.2093),
		LatLng(0, 0),
	}
	for _, a := range points {
		for _, b := range points {
			ab, err := DistanceKm(a, b)
			require.NoError(t, err)
			ba, err := DistanceKm(b, a)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "%s -> %s", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistanceKm_RejectsProjected(t *testing.T) {
	_, err := DistanceKm(LatLng(51, -1), EastingNorthing(400000, 100000))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidFrame))
}

func TestEnvelope(t *testing.T) {
	b, err := Envelope(EastingNorthing(412245, 142185), 20000)
	require.NoError(t, err)
	assert.InDelta(t, 392245, b.Min(0), 1e-9)
	assert.InDelta(t, 122185, b.Min(1), 1e-9)
	assert.InDelta(t, 432245, b.Max(0), 1e-9)
	assert.InDelta(t, 162185, b.Max(1), 1e-9)

	g, err := Envelope(LatLng(51.1789, -1.8262), 1000)
	require.NoError(t, err)
	assert.InDelta(t, 2000, g.Max(0)-g.Min(0), 1e-6)

	_, err = Envelope(EastingNorthing(0, 0), -1)
	assert.Error(t, err)
}

func TestFrame_String(t *testing.T) {
	assert.Equal(t, "geographic", Geographic.String())
	assert.Equal(t, "projected", Projected.String())
	assert.Equal(t, 27700, Projected.SRID())
	assert.Equal(t, 4326, Geographic.SRID())
	assert.Equal(t, "unknown", Frame(0).String())
}
