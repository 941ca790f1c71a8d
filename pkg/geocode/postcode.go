package geocode

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidPostcode is returned for input that cannot be a UK postcode.
var ErrInvalidPostcode = eris.New("geocode: invalid postcode")

var postcodeRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? [0-9][A-Z]{2}$`)

// NotFoundError reports a postcode the geocoder could not resolve.
type NotFoundError struct {
	Postcode string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode: postcode %q not found: %v", e.Postcode, e.Err)
	}
	return fmt.Sprintf("geocode: postcode %q not found", e.Postcode)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NormalizePostcode upper-cases pc, strips all whitespace and reinserts the
// single space before the inward code. It validates the result against the
// UK postcode shape.
func NormalizePostcode(pc string) (string, error) {
	compact := strings.ToUpper(strings.Join(strings.Fields(pc), ""))
	if len(compact) < 5 || len(compact) > 7 {
		return "", &NotFoundError{Postcode: pc, Err: ErrInvalidPostcode}
	}
	normalized := compact[:len(compact)-3] + " " + compact[len(compact)-3:]
	if !postcodeRe.MatchString(normalized) {
		return "", &NotFoundError{Postcode: pc, Err: ErrInvalidPostcode}
	}
	return normalized, nil
}
