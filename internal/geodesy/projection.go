package geodesy

import (
	"math"

	"github.com/rotisserie/eris"
)

// ellipsoid holds semi-major and semi-minor axes in metres.
type ellipsoid struct {
	a, b float64
}

func (e ellipsoid) e2() float64 {
	return (e.a*e.a - e.b*e.b) / (e.a * e.a)
}

var (
	wgs84 = ellipsoid{a: 6378137.000, b: 6356752.314245}
	airy  = ellipsoid{a: 6377563.396, b: 6356256.909}
)

// helmert is a seven-parameter similarity transform (position vector convention).
// Translations in metres, rotations in arc-seconds, scale in ppm.
type helmert struct {
	tx, ty, tz float64
	rx, ry, rz float64
	s          float64
}

func (h helmert) inverse() helmert {
	return helmert{tx: -h.tx, ty: -h.ty, tz: -h.tz, rx: -h.rx, ry: -h.ry, rz: -h.rz, s: -h.s}
}

// wgs84ToOSGB36 matches the OSGB36 datum shift used by proj4 (towgs84 inverted).
var wgs84ToOSGB36 = helmert{
	tx: -446.448, ty: 125.157, tz: -542.060,
	rx: -0.1502, ry: -0.2470, rz: -0.8421,
	s: 20.4894,
}

// National Grid transverse Mercator parameters.
const (
	gridF0   = 0.9996012717
	gridLat0 = 49.0
	gridLng0 = -2.0
	gridE0   = 400000.0
	gridN0   = -100000.0
)

const arcSecond = math.Pi / (180 * 3600)

// ToProjected converts a WGS84 coordinate to British National Grid.
func ToProjected(geo Coordinate) (Coordinate, error) {
	if err := ValidateGeographic(geo); err != nil {
		return Coordinate{}, err
	}

	lat, lng := convertDatum(radians(geo.Lat()), radians(geo.Lng()), wgs84, airy, wgs84ToOSGB36)
	e, n := transverseMercator(lat, lng)
	if !finite(e) || !finite(n) {
		return Coordinate{}, eris.Wrapf(ErrProjection, "geodesy: cannot project %s", geo)
	}
	return EastingNorthing(e, n), nil
}

// ToGeographic converts a British National Grid coordinate to WGS84.
func ToGeographic(proj Coordinate) (Coordinate, error) {
	if proj.Frame != Projected {
		return Coordinate{}, eris.Wrapf(ErrInvalidFrame, "geodesy: expected projected coordinate, got %s", proj.Frame)
	}
	if !finite(proj.X) || !finite(proj.Y) {
		return Coordinate{}, eris.Wrapf(ErrProjection, "geodesy: non-finite coordinate %s", proj)
	}

	lat, lng := inverseTransverseMercator(proj.Easting(), proj.Northing())
	lat, lng = convertDatum(lat, lng, airy, wgs84, wgs84ToOSGB36.inverse())
	out := LatLng(degrees(lat), degrees(lng))
	if !finite(out.X) || !finite(out.Y) || out.Y < -90 || out.Y > 90 {
		return Coordinate{}, eris.Wrapf(ErrProjection, "geodesy: cannot unproject %s", proj)
	}
	return out, nil
}

// convertDatum moves a latitude/longitude (radians, zero height) from one
// ellipsoid to another through geocentric cartesian coordinates.
func convertDatum(lat, lng float64, from, to ellipsoid, h helmert) (float64, float64) {
	x, y, z := toCartesian(lat, lng, from)
	x, y, z = h.apply(x, y, z)
	return fromCartesian(x, y, z, to)
}

func toCartesian(lat, lng float64, e ellipsoid) (float64, float64, float64) {
	e2 := e.e2()
	sinLat, cosLat := math.Sincos(lat)
	sinLng, cosLng := math.Sincos(lng)
	nu := e.a / math.Sqrt(1-e2*sinLat*sinLat)
	return nu * cosLat * cosLng, nu * cosLat * sinLng, (1 - e2) * nu * sinLat
}

func fromCartesian(x, y, z float64, e ellipsoid) (float64, float64) {
	e2 := e.e2()
	p := math.Hypot(x, y)
	lng := math.Atan2(y, x)
	lat := math.Atan2(z, p*(1-e2))
	for range 10 {
		sinLat := math.Sin(lat)
		nu := e.a / math.Sqrt(1-e2*sinLat*sinLat)
		next := math.Atan2(z+e2*nu*sinLat, p)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
	}
	return lat, lng
}

func (h helmert) apply(x, y, z float64) (float64, float64, float64) {
	s1 := 1 + h.s*1e-6
	rx, ry, rz := h.rx*arcSecond, h.ry*arcSecond, h.rz*arcSecond
	return h.tx + s1*x - rz*y + ry*z,
		h.ty + rz*x + s1*y - rx*z,
		h.tz - ry*x + rx*y + s1*z
}

// meridionalArc returns the developed arc of meridian from lat0 to lat.
func meridionalArc(lat float64) float64 {
	a, b := airy.a, airy.b
	n := (a - b) / (a + b)
	n2, n3 := n*n, n*n*n
	lat0 := radians(gridLat0)
	dLat, sLat := lat-lat0, lat+lat0

	ma := (1 + n + 5.0/4*n2 + 5.0/4*n3) * dLat
	mb := (3*n + 3*n2 + 21.0/8*n3) * math.Sin(dLat) * math.Cos(sLat)
	mc := (15.0/8*n2 + 15.0/8*n3) * math.Sin(2*dLat) * math.Cos(2*sLat)
	md := 35.0 / 24 * n3 * math.Sin(3*dLat) * math.Cos(3*sLat)
	return b * gridF0 * (ma - mb + mc - md)
}

// transverseMercator projects OSGB36 latitude/longitude (radians) to grid metres.
func transverseMercator(lat, lng float64) (float64, float64) {
	a := airy.a
	e2 := airy.e2()
	sinLat, cosLat := math.Sincos(lat)
	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2

	nu := a * gridF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := a * gridF0 * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	m := meridionalArc(lat)
	cos3 := cosLat * cosLat * cosLat
	cos5 := cos3 * cosLat * cosLat

	i := m + gridN0
	ii := nu / 2 * sinLat * cosLat
	iii := nu / 24 * sinLat * cos3 * (5 - tan2 + 9*eta2)
	iiiA := nu / 720 * sinLat * cos5 * (61 - 58*tan2 + tan4)
	iv := nu * cosLat
	v := nu / 6 * cos3 * (nu/rho - tan2)
	vi := nu / 120 * cos5 * (5 - 18*tan2 + tan4 + 14*eta2 - 58*tan2*eta2)

	dl := lng - radians(gridLng0)
	dl2 := dl * dl
	dl3 := dl2 * dl
	dl4 := dl3 * dl
	dl5 := dl4 * dl
	dl6 := dl5 * dl

	northing := i + ii*dl2 + iii*dl4 + iiiA*dl6
	easting := gridE0 + iv*dl + v*dl3 + vi*dl5
	return easting, northing
}

// inverseTransverseMercator converts grid metres to OSGB36 latitude/longitude (radians).
func inverseTransverseMercator(easting, northing float64) (float64, float64) {
	a := airy.a
	e2 := airy.e2()
	lat0 := radians(gridLat0)

	lat := lat0
	m := 0.0
	for range 100 {
		lat = (northing-gridN0-m)/(a*gridF0) + lat
		m = meridionalArc(lat)
		if math.Abs(northing-gridN0-m) < 1e-5 {
			break
		}
	}

	sinLat, cosLat := math.Sincos(lat)
	nu := a * gridF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := a * gridF0 * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2
	secLat := 1 / cosLat
	nu3 := nu * nu * nu
	nu5 := nu3 * nu * nu
	nu7 := nu5 * nu * nu

	vii := tanLat / (2 * rho * nu)
	viii := tanLat / (24 * rho * nu3) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanLat / (720 * rho * nu5) * (61 + 90*tan2 + 45*tan4)
	x := secLat / nu
	xi := secLat / (6 * nu3) * (nu/rho + 2*tan2)
	xii := secLat / (120 * nu5) * (5 + 28*tan2 + 24*tan4)
	xiiA := secLat / (5040 * nu7) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	de := easting - gridE0
	de2 := de * de
	de3 := de2 * de
	de4 := de3 * de
	de5 := de4 * de
	de6 := de5 * de
	de7 := de6 * de

	outLat := lat - vii*de2 + viii*de4 - ix*de6
	outLng := radians(gridLng0) + x*de - xi*de3 + xii*de5 - xiiA*de7
	return outLat, outLng
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
