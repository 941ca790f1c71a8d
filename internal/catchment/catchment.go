// Package catchment trims classified assets to the circular search area
// and orders them by distance.
package catchment

import (
	"cmp"
	"math"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
)

// Finalize recomputes each asset's distance from centroid, drops assets
// further than radiusKm, keeps the nearest copy of each ID and sorts by
// distance then ID. The input slice is not modified.
func Finalize(assets []heritage.Asset, centroid geodesy.Coordinate, radiusKm float64) ([]heritage.Asset, error) {
	if err := geodesy.ValidateGeographic(centroid); err != nil {
		return nil, eris.Wrap(err, "catchment: centroid")
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return nil, eris.Errorf("catchment: invalid radius %g", radiusKm)
	}

	nearest := make(map[string]int, len(assets))
	out := make([]heritage.Asset, 0, len(assets))
	for _, a := range assets {
		d, err := geodesy.DistanceKm(centroid, a.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "catchment: distance to %s", a.ID)
		}
		if d > radiusKm {
			continue
		}
		a = a.WithDistance(d)
		if i, ok := nearest[a.ID]; ok {
			if d < out[i].DistanceKm {
				out[i] = a
			}
			continue
		}
		nearest[a.ID] = len(out)
		out = append(out, a)
	}

	slices.SortFunc(out, func(x, y heritage.Asset) int {
		if c := cmp.Compare(x.DistanceKm, y.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out, nil
}
