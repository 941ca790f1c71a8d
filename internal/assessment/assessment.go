// Package assessment derives planning sensitivity, impact and
// recommendations from a finalized search result.
package assessment

import (
	"math"

	"github.com/sells-group/heritage-cli/internal/heritage"
)

// Level is a graded rating.
type Level string

// Rating levels, highest first.
const (
	LevelHigh       Level = "high"
	LevelMediumHigh Level = "medium-high"
	LevelMedium     Level = "medium"
	LevelLowMedium  Level = "low-medium"
	LevelLow        Level = "low"
)

// Zone boundaries (kilometres).
const (
	DirectZoneKm        = 1.0
	NationalSettingKm   = 2.0
	MediumSensitivityKm = 5.0
	HighImpactKm        = 0.5
)

// Recommendation wording.
const (
	RecScheduledMonumentConsent = "Scheduled Monument Consent will be required for any works affecting scheduled monuments"
	RecListedBuildingConsent    = "Listed Building Consent may be required; heritage impact assessment recommended"
	RecPreApplication           = "Pre-application consultation with the local planning authority heritage team is advised"
	RecEvaluation               = "Archaeological evaluation may be required to inform planning decisions"
	RecSettingsAssessment       = "Settings assessment required for nationally significant heritage assets"
	RecBestPractice             = "Development should follow best practice guidance for archaeological investigation"
)

// SensitivityOf rates how sensitive a to development at the search centroid.
func SensitivityOf(a heritage.Asset) Level {
	switch {
	case a.Category == heritage.CategoryMonument && a.DistanceKm <= DirectZoneKm:
		return LevelHigh
	case nationallySignificant(a) && a.DistanceKm <= NationalSettingKm:
		return LevelHigh
	case a.DistanceKm <= MediumSensitivityKm && a.Category != heritage.CategoryArchaeologicalFind:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ImpactOf rates the likely impact on a from its distance alone.
func ImpactOf(a heritage.Asset) Level {
	switch {
	case a.DistanceKm <= HighImpactKm:
		return LevelHigh
	case a.DistanceKm <= DirectZoneKm:
		return LevelMedium
	case a.DistanceKm <= MediumSensitivityKm:
		return LevelLowMedium
	default:
		return LevelLow
	}
}

// ThreatOf rates the development threat to a.
func ThreatOf(a heritage.Asset) Level {
	switch {
	case a.DistanceKm < DirectZoneKm:
		return LevelHigh
	case a.DistanceKm < MediumSensitivityKm:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Rated pairs an asset with its ratings.
type Rated struct {
	heritage.Asset
	Sensitivity Level `json:"sensitivity"`
	Impact      Level `json:"impact"`
	Threat      Level `json:"threat"`
}

// Summary is the assessment of one search result.
type Summary struct {
	RadiusKm           float64 `json:"radius_km"`
	Total              int     `json:"total"`
	OverallSensitivity Level   `json:"overall_sensitivity"`
	OverallRisk        Level   `json:"overall_risk"`
	// Potential grades asset density per square kilometre of catchment.
	Potential       Level                         `json:"archaeological_potential"`
	BySensitivity   map[Level][]Rated             `json:"by_sensitivity"`
	ByCategory      map[heritage.Category]int     `json:"by_category"`
	BySignificance  map[heritage.Significance]int `json:"by_significance"`
	Direct          []Rated                       `json:"direct"`
	Indirect        []Rated                       `json:"indirect"`
	Recommendations []string                      `json:"recommendations"`
}

// Evaluate assesses assets, which must already carry distances from the
// search centroid, for a search of radiusKm.
func Evaluate(assets []heritage.Asset, radiusKm float64) Summary {
	s := Summary{
		RadiusKm: radiusKm,
		Total:    len(assets),
		BySensitivity: map[Level][]Rated{
			LevelHigh:   {},
			LevelMedium: {},
			LevelLow:    {},
		},
		ByCategory:     make(map[heritage.Category]int),
		BySignificance: make(map[heritage.Significance]int),
		Direct:         []Rated{},
		Indirect:       []Rated{},
	}

	var directMonument, directBuilding, indirectNational bool
	for _, a := range assets {
		r := Rated{Asset: a, Sensitivity: SensitivityOf(a), Impact: ImpactOf(a), Threat: ThreatOf(a)}
		s.BySensitivity[r.Sensitivity] = append(s.BySensitivity[r.Sensitivity], r)
		s.ByCategory[a.Category]++
		s.BySignificance[a.Significance]++

		switch {
		case a.DistanceKm <= DirectZoneKm:
			s.Direct = append(s.Direct, r)
			directMonument = directMonument || a.Category == heritage.CategoryMonument
			directBuilding = directBuilding || a.Category == heritage.CategoryDesignatedBuilding
		case a.DistanceKm <= radiusKm:
			s.Indirect = append(s.Indirect, r)
			indirectNational = indirectNational || nationallySignificant(a)
		}
	}

	switch {
	case len(s.BySensitivity[LevelHigh]) > 0:
		s.OverallSensitivity = LevelHigh
	case len(s.BySensitivity[LevelMedium]) > 0:
		s.OverallSensitivity = LevelMedium
	default:
		s.OverallSensitivity = LevelLow
	}

	switch {
	case directMonument:
		s.OverallRisk = LevelHigh
	case len(s.Direct) > 3:
		s.OverallRisk = LevelMediumHigh
	case len(s.Direct) > 0:
		s.OverallRisk = LevelMedium
	default:
		s.OverallRisk = LevelLow
	}

	s.Potential = potential(len(assets), radiusKm)

	if directMonument {
		s.Recommendations = append(s.Recommendations, RecScheduledMonumentConsent)
	}
	if directBuilding {
		s.Recommendations = append(s.Recommendations, RecListedBuildingConsent)
	}
	if len(s.Direct) > 0 {
		s.Recommendations = append(s.Recommendations, RecPreApplication, RecEvaluation)
	}
	if indirectNational {
		s.Recommendations = append(s.Recommendations, RecSettingsAssessment)
	}
	s.Recommendations = append(s.Recommendations, RecBestPractice)
	return s
}

func nationallySignificant(a heritage.Asset) bool {
	return a.Significance == heritage.SignificanceInternational || a.Significance == heritage.SignificanceNational
}

// potential grades the number of assets per square kilometre of the
// circular catchment: above 0.1 high, above 0.05 medium.
func potential(n int, radiusKm float64) Level {
	if radiusKm <= 0 {
		return LevelLow
	}
	density := float64(n) / (math.Pi * radiusKm * radiusKm)
	switch {
	case density > 0.1:
		return LevelHigh
	case density > 0.05:
		return LevelMedium
	default:
		return LevelLow
	}
}
