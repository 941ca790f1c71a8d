// Package export encodes search results for map clients.
package export

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/heritage-cli/internal/heritage"
)

// FeatureCollection converts assets into GeoJSON Point features in WGS84
// ([lng, lat]), preserving order. The collection carries a bbox when it is
// not empty.
func FeatureCollection(assets []heritage.Asset) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(assets))}
	bounds := geom.NewBounds(geom.XY)

	for _, a := range assets {
		if !a.Location.IsGeographic() {
			return nil, eris.Errorf("export: asset %s location is not geographic", a.ID)
		}
		pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{a.Location.Lng(), a.Location.Lat()})
		if err != nil {
			return nil, eris.Wrapf(err, "export: point for %s", a.ID)
		}
		bounds.Extend(pt)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         a.ID,
			Geometry:   pt,
			Properties: properties(a),
		})
	}
	if len(fc.Features) > 0 {
		fc.BBox = bounds
	}
	return fc, nil
}

// GeoJSON encodes assets as a GeoJSON FeatureCollection document.
func GeoJSON(assets []heritage.Asset) ([]byte, error) {
	fc, err := FeatureCollection(assets)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal feature collection")
	}
	return data, nil
}

func properties(a heritage.Asset) map[string]interface{} {
	p := map[string]interface{}{
		"name":         a.Name,
		"category":     string(a.Category),
		"significance": string(a.Significance),
		"period":       a.Period,
		"distance_km":  a.DistanceKm,
		"designation":  a.Designation,
	}
	optional := map[string]string{
		"source_reference": a.SourceReference,
		"description":      a.Description,
		"source":           a.Source,
		"hyperlink":        a.Hyperlink,
		"county":           a.County,
		"district":         a.District,
		"parish":           a.Parish,
		"ngr":              a.NGR,
	}
	for k, v := range optional {
		if v != "" {
			p[k] = v
		}
	}
	return p
}
