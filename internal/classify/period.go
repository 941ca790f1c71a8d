package classify

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/heritage-cli/internal/heritage"
)

// eraKeywords are scanned earliest first. Qualified medieval forms precede
// the bare keyword so "post medieval" is not read as "Medieval".
var eraKeywords = []string{
	"Palaeolithic",
	"Mesolithic",
	"Neolithic",
	"Bronze Age",
	"Iron Age",
	"Roman",
	"Early Medieval",
	"Post Medieval",
	"Medieval",
	"Modern",
	"Saxon",
	"Norman",
	"Tudor",
	"Stuart",
	"Georgian",
	"Victorian",
	"Edwardian",
}

var centuryRe = regexp.MustCompile(`(?i)(\d{1,2})(th|st|nd|rd)\s*century`)

// inferPeriod returns the explicit period attribute, else the first era
// keyword in the description then the name, else a bucketed ordinal
// century, else heritage.UnknownPeriod.
func inferPeriod(attrs heritage.Attributes, description, name string) string {
	if p, ok := attrs.String(periodAliases...); ok {
		return p
	}
	texts := []string{description, name}
	fold := cases.Fold()
	for _, text := range texts {
		if text == "" {
			continue
		}
		normalized := fold.String(strings.ReplaceAll(text, "-", " "))
		for _, kw := range eraKeywords {
			if strings.Contains(normalized, fold.String(kw)) {
				return kw
			}
		}
	}
	for _, text := range texts {
		if p, ok := centuryPeriod(text); ok {
			return p
		}
	}
	return heritage.UnknownPeriod
}

func centuryPeriod(text string) (string, bool) {
	m := centuryRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	century, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	switch {
	case century <= 5:
		return "Early Medieval", true
	case century <= 11:
		return "Medieval", true
	case century <= 16:
		return "Post Medieval", true
	default:
		return "Modern", true
	}
}
