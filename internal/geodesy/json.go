package geodesy

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

type coordinateJSON struct {
	Frame    string   `json:"frame"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Easting  *float64 `json:"easting,omitempty"`
	Northing *float64 `json:"northing,omitempty"`
}

// MarshalJSON encodes the coordinate with frame-specific field names.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	out := coordinateJSON{Frame: c.Frame.String()}
	x, y := c.X, c.Y
	switch c.Frame {
	case Geographic:
		out.Lat, out.Lng = &y, &x
	case Projected:
		out.Easting, out.Northing = &x, &y
	default:
		return nil, eris.Wrapf(ErrInvalidFrame, "geodesy: cannot encode coordinate in %s frame", c.Frame)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the frame-tagged form written by MarshalJSON.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var in coordinateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return eris.Wrap(err, "geodesy: decode coordinate")
	}
	switch in.Frame {
	case "geographic":
		if in.Lat == nil || in.Lng == nil {
			return eris.New("geodesy: geographic coordinate requires lat and lng")
		}
		*c = LatLng(*in.Lat, *in.Lng)
	case "projected":
		if in.Easting == nil || in.Northing == nil {
			return eris.New("geodesy: projected coordinate requires easting and northing")
		}
		*c = EastingNorthing(*in.Easting, *in.Northing)
	default:
		return eris.Wrapf(ErrInvalidFrame, "geodesy: unknown frame %q", in.Frame)
	}
	return nil
}
