package geocode

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// newProductionURLGeocoder returns a geocoder configured with DefaultBaseURL
// whose transport sends every postcodes.io request to serverURL instead.
func newProductionURLGeocoder(serverURL string) *geocoder {
	return &geocoder{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Transport: redirectTransport{from: DefaultBaseURL, to: serverURL}},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// redirectTransport swaps the from prefix of a request URL for to.
type redirectTransport struct {
	from string
	to   string
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	orig := req.URL.String()
	if !strings.HasPrefix(orig, t.from) {
		return http.DefaultTransport.RoundTrip(req)
	}
	u, err := url.Parse(t.to + strings.TrimPrefix(orig, t.from))
	if err != nil {
		return nil, err
	}
	out := req.Clone(req.Context())
	out.URL = u
	out.Host = u.Host
	return http.DefaultTransport.RoundTrip(out)
}
