package geodesy

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// EarthRadiusKM is the mean Earth radius used for haversine distances.
const EarthRadiusKM = 6371.0

// DistanceKm returns the great-circle distance between two geographic
// coordinates using the haversine formula.
func DistanceKm(a, b Coordinate) (float64, error) {
	if a.Frame != Geographic || b.Frame != Geographic {
		return 0, eris.Wrapf(ErrInvalidFrame, "geodesy: distance requires geographic coordinates, got %s and %s", a.Frame, b.Frame)
	}
	return haversineKM(a.Lat(), a.Lng(), b.Lat(), b.Lng()), nil
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLng*sinLng
	return 2 * EarthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Envelope returns the square in the projected frame centred on centre with
// the given half-width in metres. A geographic centre is projected first.
// The square over-covers the circle of the same radius.
func Envelope(centre Coordinate, halfWidthM float64) (*geom.Bounds, error) {
	if !finite(halfWidthM) || halfWidthM < 0 {
		return nil, eris.Errorf("geodesy: invalid envelope half-width %g", halfWidthM)
	}
	if centre.Frame == Geographic {
		p, err := ToProjected(centre)
		if err != nil {
			return nil, err
		}
		centre = p
	}
	if centre.Frame != Projected {
		return nil, eris.Wrapf(ErrInvalidFrame, "geodesy: envelope centre in %s frame", centre.Frame)
	}
	return geom.NewBounds(geom.XY).Set(
		centre.X-halfWidthM, centre.Y-halfWidthM,
		centre.X+halfWidthM, centre.Y+halfWidthM,
	), nil
}
