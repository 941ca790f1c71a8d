// Package classify turns heterogeneous endpoint records into canonical
// heritage assets.
package classify

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/heritage"
)

// ErrNoCoordinate is returned for a record with no usable coordinate.
var ErrNoCoordinate = eris.New("classify: record has no usable coordinate")

// Attribute alias chains, first present wins.
var (
	gradeAliases       = []string{"Grade", "ListGrade"}
	categoryAliases    = []string{"HeritageCategory", "Category", "DesigType"}
	schedulingAliases  = []string{"ScheduledMonumentNumber", "SchedMonNo"}
	nameAliases        = []string{"Name", "SiteName"}
	descriptionAliases = []string{"CuratedDescription", "Description", "Location"}
	periodAliases      = []string{"PeriodFrom", "Period"}
	listEntryAliases   = []string{"ListEntry", "ListEntryNumber"}
	objectIDAliases    = []string{"OBJECTID", "FID"}
)

// Classify builds an Asset from raw. It fails only when the record has no
// coordinate or the coordinate cannot be projected; every other field falls
// back to a default. DistanceKm is left at zero.
func Classify(raw heritage.RawRecord) (heritage.Asset, error) {
	native, ok := heritage.NativeCoordinate(raw)
	if !ok {
		return heritage.Asset{}, ErrNoCoordinate
	}
	loc, err := geodesy.ToGeographic(native)
	if err != nil {
		return heritage.Asset{}, eris.Wrapf(err, "classify: record %d from %s", raw.Index, raw.Source)
	}

	attrs := raw.Attributes
	fold := cases.Fold()

	categoryText, ok := attrs.String(categoryAliases...)
	if !ok {
		categoryText = raw.CategoryHint
	}
	foldedCategory := fold.String(categoryText)
	_, hasScheduleNo := attrs.String(schedulingAliases...)
	scheduled := hasScheduleNo || strings.Contains(foldedCategory, "scheduled")
	grade := normalizeGrade(attrs)

	name, ok := attrs.String(nameAliases...)
	if !ok {
		name = heritage.UnnamedAsset
	}
	description, _ := attrs.String(descriptionAliases...)

	asset := heritage.Asset{
		ID:           assetID(raw),
		Name:         name,
		Category:     categoryOf(scheduled, grade, foldedCategory),
		Significance: significanceOf(scheduled, grade, foldedCategory),
		Period:       inferPeriod(attrs, description, name),
		Location:     loc,
		Designation:  designationOf(scheduled, grade, categoryText),
		Description:  description,
		Source:       raw.Source,
	}
	if entry, ok := attrs.String(listEntryAliases...); ok {
		asset.SourceReference = "NHLE " + entry
	}
	asset.Hyperlink, _ = attrs.String("Hyperlink")
	asset.County, _ = attrs.String("County")
	asset.District, _ = attrs.String("District")
	asset.Parish, _ = attrs.String("Parish")
	asset.NGR, _ = attrs.String("NGR")
	return asset, nil
}

func categoryOf(scheduled bool, grade, foldedCategory string) heritage.Category {
	switch {
	case scheduled:
		return heritage.CategoryMonument
	case grade != "":
		return heritage.CategoryDesignatedBuilding
	case strings.Contains(foldedCategory, "park"), strings.Contains(foldedCategory, "garden"):
		return heritage.CategoryLandscapeArea
	case strings.Contains(foldedCategory, "wreck"), strings.Contains(foldedCategory, "battlefield"):
		return heritage.CategoryArchaeologicalFind
	default:
		return heritage.CategoryOtherSite
	}
}

func significanceOf(scheduled bool, grade, foldedCategory string) heritage.Significance {
	switch {
	case grade == "I" || scheduled:
		return heritage.SignificanceNational
	case grade == "II*":
		return heritage.SignificanceRegional
	case grade == "II":
		return heritage.SignificanceLocal
	case strings.Contains(foldedCategory, "international"):
		return heritage.SignificanceInternational
	default:
		return heritage.SignificanceLocal
	}
}

func designationOf(scheduled bool, grade, categoryText string) string {
	switch {
	case grade != "":
		return "Grade " + grade + " Listed Building"
	case scheduled:
		return "Scheduled Monument"
	case categoryText != "":
		return categoryText
	default:
		return heritage.DefaultDesignation
	}
}

// normalizeGrade maps the grade attribute onto I, II*, II or the trimmed
// upper-case source text. It returns "" when no grade is present.
func normalizeGrade(attrs heritage.Attributes) string {
	g, ok := attrs.String(gradeAliases...)
	if !ok {
		return ""
	}
	g = strings.ToUpper(strings.Join(strings.Fields(g), ""))
	g = strings.TrimPrefix(g, "GRADE")
	switch g {
	case "1":
		return "I"
	case "2*":
		return "II*"
	case "2":
		return "II"
	}
	return g
}

// assetID prefers the national list entry, then an endpoint-scoped object
// id, then the record's merge position.
func assetID(raw heritage.RawRecord) string {
	if entry, ok := raw.Attributes.String(listEntryAliases...); ok {
		return "nhle_" + entry
	}
	if oid, ok := raw.Attributes.String(objectIDAliases...); ok {
		return "nhle_" + raw.Source + "_" + oid
	}
	return "nhle_" + raw.Source + "_idx_" + strconv.Itoa(raw.Index)
}
