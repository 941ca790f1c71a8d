package heritage

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/heritage-cli/internal/geodesy"
)

// Geometry is an ArcGIS JSON geometry in the projected frame. Only one of the
// point, ring, or path forms is normally set.
type Geometry struct {
	X     *float64      `json:"x,omitempty"`
	Y     *float64      `json:"y,omitempty"`
	Rings [][][]float64 `json:"rings,omitempty"`
	Paths [][][]float64 `json:"paths,omitempty"`
}

// RawRecord is one feature as returned by a single endpoint. It carries the
// source attributes untouched.
type RawRecord struct {
	Attributes Attributes
	Geometry   *Geometry

	// Source is the name of the endpoint that produced the record.
	Source string
	// CategoryHint is the endpoint's schema hint for records with no category attribute.
	CategoryHint string
	// Index is the record's position in the merged aggregate result.
	Index int
}

// Coordinate attribute aliases, in priority order after the embedded geometry.
var coordinateAliases = [][2]string{
	{"POINT_X", "POINT_Y"},
	{"Easting", "Northing"},
	{"X", "Y"},
}

// NativeCoordinate resolves the record's projected coordinate from the
// embedded geometry, then from the known attribute aliases. Zero values are
// treated as missing because the services use them as null fill.
func NativeCoordinate(r RawRecord) (geodesy.Coordinate, bool) {
	if r.Geometry != nil {
		if x, y, ok := r.Geometry.representativePoint(); ok {
			return geodesy.EastingNorthing(x, y), true
		}
	}
	for _, pair := range coordinateAliases {
		x, okX := r.Attributes.Number(pair[0])
		y, okY := r.Attributes.Number(pair[1])
		if okX && okY && usable(x) && usable(y) {
			return geodesy.EastingNorthing(x, y), true
		}
	}
	return geodesy.Coordinate{}, false
}

// representativePoint returns the point itself, or the centroid of the
// rings or paths.
func (g *Geometry) representativePoint() (float64, float64, bool) {
	if g.X != nil && g.Y != nil && usable(*g.X) && usable(*g.Y) {
		return *g.X, *g.Y, true
	}
	if len(g.Rings) > 0 {
		mp := geom.NewMultiPolygon(geom.XY)
		for _, ring := range g.Rings {
			coords := toCoords(ring)
			if len(coords) < 3 {
				continue
			}
			poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{coords})
			if err != nil {
				continue
			}
			if err := mp.Push(poly); err != nil {
				continue
			}
		}
		if mp.NumPolygons() > 0 {
			if c, err := xy.Centroid(mp); err == nil && usable(c.X()) && usable(c.Y()) {
				return c.X(), c.Y(), true
			}
		}
	}
	if len(g.Paths) > 0 {
		paths := make([][]geom.Coord, 0, len(g.Paths))
		for _, path := range g.Paths {
			if coords := toCoords(path); len(coords) >= 2 {
				paths = append(paths, coords)
			}
		}
		if len(paths) > 0 {
			mls, err := geom.NewMultiLineString(geom.XY).SetCoords(paths)
			if err == nil {
				if c, err := xy.Centroid(mls); err == nil && usable(c.X()) && usable(c.Y()) {
					return c.X(), c.Y(), true
				}
			}
		}
	}
	return 0, 0, false
}

func toCoords(points [][]float64) []geom.Coord {
	coords := make([]geom.Coord, 0, len(points))
	for _, p := range points {
		if len(p) < 2 || !usable(p[0]) || !usable(p[1]) {
			continue
		}
		coords = append(coords, geom.Coord{p[0], p[1]})
	}
	return coords
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
