package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// lookupResponse is the postcodes.io single lookup envelope.
type lookupResponse struct {
	Status int             `json:"status"`
	Error  string          `json:"error"`
	Result *postcodeResult `json:"result"`
}

// nearestResponse is the postcodes.io reverse lookup envelope.
type nearestResponse struct {
	Status int              `json:"status"`
	Error  string           `json:"error"`
	Result []postcodeResult `json:"result"`
}

type postcodeResult struct {
	Postcode      string   `json:"postcode"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Country       string   `json:"country"`
	Region        string   `json:"region"`
	AdminDistrict string   `json:"admin_district"`
	Parish        string   `json:"parish"`
}

func (r postcodeResult) toResult() (*Result, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return nil, false
	}
	return &Result{
		Postcode:      r.Postcode,
		Latitude:      *r.Latitude,
		Longitude:     *r.Longitude,
		Country:       r.Country,
		Region:        r.Region,
		AdminDistrict: r.AdminDistrict,
		Parish:        r.Parish,
	}, true
}

// Geocode resolves a postcode via GET {base}/{postcode}.
func (g *geocoder) Geocode(ctx context.Context, postcode string) (*Result, error) {
	pc, err := NormalizePostcode(postcode)
	if err != nil {
		return nil, err
	}

	body, status, err := g.get(ctx, g.baseURL+"/"+url.PathEscape(pc))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &NotFoundError{Postcode: pc}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("geocode: postcodes.io returned status %d", status)
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "geocode: parse postcode response")
	}
	if resp.Status != http.StatusOK || resp.Result == nil {
		return nil, &NotFoundError{Postcode: pc}
	}
	result, ok := resp.Result.toResult()
	if !ok {
		// Terminated or non-geographic postcodes carry null coordinates.
		return nil, &NotFoundError{Postcode: pc}
	}
	return result, nil
}

// Nearest returns the closest postcode via GET {base}?lon=&lat=&limit=1.
func (g *geocoder) Nearest(ctx context.Context, lat, lng float64) (*Result, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lng, 'f', -1, 64)},
		"limit": {"1"},
	}
	body, status, err := g.get(ctx, g.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("geocode: postcodes.io returned status %d", status)
	}

	var resp nearestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "geocode: parse nearest response")
	}
	for _, r := range resp.Result {
		if result, ok := r.toResult(); ok {
			return result, nil
		}
	}
	return nil, eris.Errorf("geocode: no postcode near %g,%g", lat, lng)
}

func (g *geocoder) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, 0, eris.Wrap(err, "geocode: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, eris.Wrap(err, "geocode: read body")
	}
	return body, resp.StatusCode, nil
}
