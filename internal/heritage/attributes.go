// Package heritage defines the raw and canonical records that flow through the
// heritage asset search pipeline.
package heritage

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Attributes is a read-only view over a source record's attribute mapping.
// Lookups take an ordered alias chain; each alias is tried as an exact key
// first, then case-insensitively.
type Attributes struct {
	values map[string]any
	folded map[string]string // folded key -> original key
}

// NewAttributes copies m into an Attributes view.
func NewAttributes(m map[string]any) Attributes {
	a := Attributes{
		values: make(map[string]any, len(m)),
		folded: make(map[string]string, len(m)),
	}
	keys := make([]string, 0, len(m))
	for k, v := range m {
		a.values[k] = v
		keys = append(keys, k)
	}
	// Sorted so that keys differing only by case resolve deterministically.
	sort.Strings(keys)
	for _, k := range keys {
		f := foldKey(k)
		if _, ok := a.folded[f]; !ok {
			a.folded[f] = k
		}
	}
	return a
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.values) }

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the first present, non-empty value along the alias chain.
func (a Attributes) Lookup(aliases ...string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := a.get(alias); ok && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

// String returns the first alias whose value renders as a non-empty string.
// Numbers are formatted without trailing zeros.
func (a Attributes) String(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		v, ok := a.get(alias)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s, true
		}
	}
	return "", false
}

// Number returns the first alias whose value is a finite number or a numeric string.
func (a Attributes) Number(aliases ...string) (float64, bool) {
	for _, alias := range aliases {
		v, ok := a.get(alias)
		if !ok {
			continue
		}
		if f, ok := asNumber(v); ok {
			return f, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the underlying mapping.
func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.values)
}

func (a Attributes) get(key string) (any, bool) {
	if v, ok := a.values[key]; ok {
		return v, true
	}
	if orig, ok := a.folded[foldKey(key)]; ok {
		return a.values[orig], true
	}
	return nil, false
}

func foldKey(s string) string {
	return cases.Fold().String(s)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), t.String() != ""
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
