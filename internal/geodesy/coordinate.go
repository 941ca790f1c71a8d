// Package geodesy converts between WGS84 latitude/longitude and the British
// National Grid, and computes great-circle distances.
package geodesy

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// Frame identifies the reference system a Coordinate is expressed in.
type Frame int

const (
	// Geographic is WGS84 latitude/longitude in degrees (EPSG:4326).
	Geographic Frame = iota + 1
	// Projected is British National Grid easting/northing in metres (EPSG:27700).
	Projected
)

// SRID returns the EPSG code for the frame.
func (f Frame) SRID() int {
	switch f {
	case Geographic:
		return 4326
	case Projected:
		return 27700
	default:
		return 0
	}
}

// String returns the human-readable frame name.
func (f Frame) String() string {
	switch f {
	case Geographic:
		return "geographic"
	case Projected:
		return "projected"
	default:
		return "unknown"
	}
}

var (
	// ErrProjection is returned when a coordinate is outside the domain of the projection.
	ErrProjection = eris.New("geodesy: coordinate outside projection domain")

	// ErrInvalidFrame is returned when a coordinate is in the wrong reference frame for an operation.
	ErrInvalidFrame = eris.New("geodesy: invalid coordinate frame")
)

// Coordinate is a point tagged with its reference frame. For Geographic
// coordinates X is longitude and Y is latitude; for Projected coordinates X is
// easting and Y is northing.
type Coordinate struct {
	Frame Frame
	X     float64
	Y     float64
}

// LatLng returns a geographic coordinate.
func LatLng(lat, lng float64) Coordinate {
	return Coordinate{Frame: Geographic, X: lng, Y: lat}
}

// EastingNorthing returns a projected coordinate.
func EastingNorthing(easting, northing float64) Coordinate {
	return Coordinate{Frame: Projected, X: easting, Y: northing}
}

// Lat returns the latitude of a geographic coordinate.
func (c Coordinate) Lat() float64 { return c.Y }

// Lng returns the longitude of a geographic coordinate.
func (c Coordinate) Lng() float64 { return c.X }

// Easting returns the easting of a projected coordinate.
func (c Coordinate) Easting() float64 { return c.X }

// Northing returns the northing of a projected coordinate.
func (c Coordinate) Northing() float64 { return c.Y }

// IsGeographic reports whether c is in the geographic frame.
func (c Coordinate) IsGeographic() bool { return c.Frame == Geographic }

// IsProjected reports whether c is in the projected frame.
func (c Coordinate) IsProjected() bool { return c.Frame == Projected }

func (c Coordinate) String() string {
	switch c.Frame {
	case Geographic:
		return fmt.Sprintf("(%.6f, %.6f)", c.Y, c.X)
	case Projected:
		return fmt.Sprintf("E%.1f N%.1f", c.X, c.Y)
	default:
		return fmt.Sprintf("unknown(%g, %g)", c.X, c.Y)
	}
}

// ValidateGeographic checks that c is a finite, in-range WGS84 coordinate.
func ValidateGeographic(c Coordinate) error {
	if c.Frame != Geographic {
		return eris.Wrapf(ErrInvalidFrame, "geodesy: expected geographic coordinate, got %s", c.Frame)
	}
	if !finite(c.X) || !finite(c.Y) {
		return eris.Wrapf(ErrProjection, "geodesy: non-finite coordinate %s", c)
	}
	if c.Y < -90 || c.Y > 90 {
		return eris.Wrapf(ErrProjection, "geodesy: latitude %g out of range", c.Y)
	}
	if c.X < -180 || c.X > 180 {
		return eris.Wrapf(ErrProjection, "geodesy: longitude %g out of range", c.X)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
