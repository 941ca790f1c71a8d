package heritage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/heritage-cli/internal/geodesy"
)

func ptr(v float64) *float64 { return &v }

func TestAttributes_AliasChain(t *testing.T) {
	a := NewAttributes(map[string]any{
		"Name":       "  ",
		"SITENAME":   "Old Sarum",
		"ListEntry":  1000001.0,
		"Grade":      "II*",
		"Easting":    "412245.5",
		"Northing":   142185.0,
		"Bad":        "not a number",
		"NullField":  nil,
		"HasCellars": true,
	})

	name, ok := a.String("Name", "SiteName")
	require.True(t, ok)
	assert.Equal(t, "Old Sarum", name, "blank Name falls through to case-insensitive SiteName")

	entry, ok := a.String("ListEntry")
	require.True(t, ok)
	assert.Equal(t, "1000001", entry)

	e, ok := a.Number("easting")
	require.True(t, ok)
	assert.InDelta(t, 412245.5, e, 1e-9)

	_, ok = a.Number("Bad")
	assert.False(t, ok)

	_, ok = a.Lookup("NullField", "Missing")
	assert.False(t, ok)

	v, ok := a.Lookup("Missing", "HasCellars")
	require.True(t, ok)
	assert.Equal(t, true, v)

	assert.Equal(t, 9, a.Len())
	assert.Equal(t, "Bad", a.Keys()[0])
}

func TestAttributes_CaseCollisionIsDeterministic(t *testing.T) {
	for range 20 {
		a := NewAttributes(map[string]any{"GRADE": "I", "grade": "II"})
		g, ok := a.String("Grade")
		require.True(t, ok)
		assert.Equal(t, "I", g)
	}
}

func TestAttributes_MarshalJSON(t *testing.T) {
	a := NewAttributes(map[string]any{"Name": "Stonehenge"})
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"Stonehenge"}`, string(b))
}

func TestNativeCoordinate_Priority(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		want   geodesy.Coordinate
		ok     bool
	}{
		{
			name: "geometry point wins",
			record: RawRecord{
				Geometry:   &Geometry{X: ptr(410000), Y: ptr(140000)},
				Attributes: NewAttributes(map[string]any{"POINT_X": 1.0, "POINT_Y": 2.0}),
			},
			want: geodesy.EastingNorthing(410000, 140000),
			ok:   true,
		},
		{
			name: "POINT_X before Easting",
			record: RawRecord{
				Attributes: NewAttributes(map[string]any{
					"POINT_X": 411000.0, "POINT_Y": 141000.0,
					"Easting": 1.0, "Northing": 2.0,
				}),
			},
			want: geodesy.EastingNorthing(411000, 141000),
			ok:   true,
		},
		{
			name: "zero geometry falls through to Easting",
			record: RawRecord{
				Geometry:   &Geometry{X: ptr(0), Y: ptr(0)},
				Attributes: NewAttributes(map[string]any{"Easting": 412000.0, "Northing": 142000.0}),
			},
			want: geodesy.EastingNorthing(412000, 142000),
			ok:   true,
		},
		{
			name: "half pair is not usable",
			record: RawRecord{
				Attributes: NewAttributes(map[string]any{"POINT_X": 411000.0, "Northing": 142000.0}),
			},
			ok: false,
		},
		{
			name:   "nothing",
			record: RawRecord{Attributes: NewAttributes(map[string]any{"Name": "x"})},
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NativeCoordinate(tt.record)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNativeCoordinate_PolygonCentroid(t *testing.T) {
	r := RawRecord{
		Geometry: &Geometry{Rings: [][][]float64{{
			{410000, 140000}, {410000, 142000}, {412000, 142000}, {412000, 140000}, {410000, 140000},
		}}},
		Attributes: NewAttributes(nil),
	}
	c, ok := NativeCoordinate(r)
	require.True(t, ok)
	assert.InDelta(t, 411000, c.Easting(), 1e-6)
	assert.InDelta(t, 141000, c.Northing(), 1e-6)
}

func TestNativeCoordinate_PathCentroid(t *testing.T) {
	r := RawRecord{
		Geometry: &Geometry{Paths: [][][]float64{{
			{410000, 140000}, {414000, 140000},
		}}},
		Attributes: NewAttributes(nil),
	}
	c, ok := NativeCoordinate(r)
	require.True(t, ok)
	assert.InDelta(t, 412000, c.Easting(), 1e-6)
	assert.InDelta(t, 140000, c.Northing(), 1e-6)
}

func TestEnums(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("listed_building").Valid())

	c, err := ParseCategory("monument")
	require.NoError(t, err)
	assert.Equal(t, CategoryMonument, c)
	_, err = ParseCategory("castle")
	assert.Error(t, err)

	assert.Equal(t, 0, SignificanceInternational.Rank())
	assert.Equal(t, 3, SignificanceLocal.Rank())
	assert.Equal(t, -1, Significance("global").Rank())
	assert.False(t, Significance("global").Valid())
}

func TestAsset_WithDistanceCopies(t *testing.T) {
	a := Asset{ID: "nhle_1", DistanceKm: 0}
	b := a.WithDistance(2.5)
	assert.Equal(t, 0.0, a.DistanceKm)
	assert.Equal(t, 2.5, b.DistanceKm)
}
