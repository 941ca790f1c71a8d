// Package arcgis queries ArcGIS FeatureServer layers for heritage records
// inside a search envelope.
package arcgis

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const historicEnglandBase = "https://services1.arcgis.com/ESMARspQHYMw9BZ9/arcgis/rest/services/"

// Endpoint is one remote spatial service.
type Endpoint struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	URL  string `yaml:"url" json:"url" mapstructure:"url"`
	// CategoryHint describes the layer's content for records that carry no
	// category attribute of their own.
	CategoryHint string `yaml:"category_hint" json:"category_hint,omitempty" mapstructure:"category_hint"`
}

// DefaultEndpoints returns the Historic England National Heritage List layers.
func DefaultEndpoints() []Endpoint {
	layer := func(name, hint string) Endpoint {
		return Endpoint{
			Name:         name,
			URL:          historicEnglandBase + name + "/FeatureServer/0/query",
			CategoryHint: hint,
		}
	}
	return []Endpoint{
		layer("Listed_Buildings", "Listed Building"),
		layer("Scheduled_Monuments", "Scheduled Monument"),
		layer("Registered_Parks_and_Gardens", "Registered Park and Garden"),
		layer("Protected_Wrecks", "Protected Wreck"),
		layer("Registered_Battlefields", "Registered Battlefield"),
	}
}

// endpointsFile is the on-disk format read by LoadEndpoints.
type endpointsFile struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// LoadEndpoints reads an endpoint list from a YAML file with a top-level
// endpoints key.
func LoadEndpoints(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "arcgis: read endpoints file %s", path)
	}

	var f endpointsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "arcgis: parse endpoints file %s", path)
	}
	if err := ValidateEndpoints(f.Endpoints); err != nil {
		return nil, eris.Wrapf(err, "arcgis: endpoints file %s", path)
	}
	return f.Endpoints, nil
}

// ValidateEndpoints checks that every endpoint has a unique name and an
// http(s) URL.
func ValidateEndpoints(eps []Endpoint) error {
	if len(eps) == 0 {
		return eris.New("arcgis: no endpoints configured")
	}
	seen := make(map[string]bool, len(eps))
	for i, ep := range eps {
		if strings.TrimSpace(ep.Name) == "" {
			return eris.Errorf("arcgis: endpoint %d has no name", i)
		}
		if seen[ep.Name] {
			return eris.Errorf("arcgis: duplicate endpoint name %q", ep.Name)
		}
		seen[ep.Name] = true
		if !strings.HasPrefix(ep.URL, "http://") && !strings.HasPrefix(ep.URL, "https://") {
			return eris.Errorf("arcgis: endpoint %q has invalid url %q", ep.Name, ep.URL)
		}
	}
	return nil
}
