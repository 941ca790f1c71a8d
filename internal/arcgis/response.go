package arcgis

import (
	"github.com/sells-group/heritage-cli/internal/heritage"
)

// queryResponse is the subset of the FeatureServer query payload we read.
// Features is a pointer so a missing key can be told apart from an empty list.
type queryResponse struct {
	Features              *[]feature    `json:"features"`
	Error                 *serviceError `json:"error"`
	ExceededTransferLimit bool          `json:"exceededTransferLimit"`
}

type feature struct {
	Attributes map[string]any     `json:"attributes"`
	Geometry   *heritage.Geometry `json:"geometry"`
}

// serviceError is the error object ArcGIS returns inside an HTTP 200 body.
type serviceError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}
