package heritage

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/heritage-cli/internal/geodesy"
)

// Category is the closed taxonomy of heritage asset kinds.
type Category string

// Categories, in classification priority order.
const (
	CategoryMonument           Category = "monument"
	CategoryDesignatedBuilding Category = "designated-building"
	CategoryLandscapeArea      Category = "landscape-area"
	CategoryArchaeologicalFind Category = "archaeological-find"
	CategoryOtherSite          Category = "other-site"
)

// Categories lists every valid Category.
var Categories = []Category{
	CategoryMonument,
	CategoryDesignatedBuilding,
	CategoryLandscapeArea,
	CategoryArchaeologicalFind,
	CategoryOtherSite,
}

// Valid reports whether c is one of the closed set.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", eris.Errorf("heritage: unknown category %q", s)
	}
	return c, nil
}

// Significance is the closed ranking of an asset's importance.
type Significance string

// Significance tiers, highest first.
const (
	SignificanceInternational Significance = "international"
	SignificanceNational      Significance = "national"
	SignificanceRegional      Significance = "regional"
	SignificanceLocal         Significance = "local"
)

// Significances lists every valid Significance, highest first.
var Significances = []Significance{
	SignificanceInternational,
	SignificanceNational,
	SignificanceRegional,
	SignificanceLocal,
}

// Valid reports whether s is one of the closed set.
func (s Significance) Valid() bool {
	for _, v := range Significances {
		if s == v {
			return true
		}
	}
	return false
}

// Rank returns 0 for international through 3 for local; -1 if invalid.
func (s Significance) Rank() int {
	for i, v := range Significances {
		if s == v {
			return i
		}
	}
	return -1
}

// Default values for fields the source did not supply.
const (
	UnnamedAsset       = "Unnamed Heritage Asset"
	UnknownPeriod      = "Unknown"
	DefaultDesignation = "Heritage Asset"
)

// Asset is the canonical heritage asset. It is built once from a RawRecord
// and treated as a value afterwards.
type Asset struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        Category           `json:"category"`
	Significance    Significance       `json:"significance"`
	Period          string             `json:"period"`
	Location        geodesy.Coordinate `json:"location"`
	DistanceKm      float64            `json:"distance_km"`
	SourceReference string             `json:"source_reference,omitempty"`

	Designation string `json:"designation"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Hyperlink   string `json:"hyperlink,omitempty"`
	County      string `json:"county,omitempty"`
	District    string `json:"district,omitempty"`
	Parish      string `json:"parish,omitempty"`
	NGR         string `json:"ngr,omitempty"`
}

// WithDistance returns a copy of a with DistanceKm set.
func (a Asset) WithDistance(km float64) Asset {
	a.DistanceKm = km
	return a
}
