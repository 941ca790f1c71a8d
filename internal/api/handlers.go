package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/assessment"
	"github.com/sells-group/heritage-cli/internal/export"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/search"
	"github.com/sells-group/heritage-cli/pkg/geocode"
)

var errBadQuery = eris.New("api: bad query")

type assessmentResponse struct {
	QueryID  string             `json:"query_id"`
	Postcode string             `json:"postcode,omitempty"`
	Centroid geodesy.Coordinate `json:"centroid"`
	assessment.Summary
}

type endpointResponse struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	CategoryHint string `json:"category_hint,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "geojson" {
		s.respondError(w, http.StatusBadRequest, "format must be json or geojson")
		return
	}

	res, ok := s.runSearch(w, r)
	if !ok {
		return
	}

	if format == "geojson" {
		body, err := export.GeoJSON(res.Assets)
		if err != nil {
			s.logger.Error("api: encode geojson", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to encode geojson")
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runSearch(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, assessmentResponse{
		QueryID:  res.QueryID,
		Postcode: res.Postcode,
		Centroid: res.Centroid,
		Summary:  assessment.Evaluate(res.Assets, res.RadiusKm),
	})
}

func (s *Server) handleEndpoints(w http.ResponseWriter, _ *http.Request) {
	eps := s.searcher.Endpoints()
	out := make([]endpointResponse, 0, len(eps))
	for _, ep := range eps {
		out = append(out, endpointResponse{Name: ep.Name, URL: ep.URL, CategoryHint: ep.CategoryHint})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"endpoints": out})
}

// runSearch parses the location query and runs the search, writing the
// error response itself when it fails.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) (*search.Result, bool) {
	q := r.URL.Query()

	radius := s.opts.DefaultRadiusKm
	if raw := q.Get("radius_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "radius_km must be a number")
			return nil, false
		}
		radius = v
	}

	var (
		res *search.Result
		err error
	)
	if pc := strings.TrimSpace(q.Get("postcode")); pc != "" {
		res, err = s.searcher.FindByPostcode(r.Context(), pc, radius)
	} else {
		centroid, perr := parseLatLng(q.Get("lat"), q.Get("lng"))
		if perr != nil {
			s.respondError(w, http.StatusBadRequest, "postcode or lat and lng are required")
			return nil, false
		}
		res, err = s.searcher.Search(r.Context(), centroid, radius)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("api: search failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err),
			)
		}
		s.respondError(w, status, err.Error())
		return nil, false
	}
	return res, true
}

func parseLatLng(latRaw, lngRaw string) (geodesy.Coordinate, error) {
	if latRaw == "" || lngRaw == "" {
		return geodesy.Coordinate{}, errBadQuery
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return geodesy.Coordinate{}, eris.Wrap(errBadQuery, "api: lat")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return geodesy.Coordinate{}, eris.Wrap(errBadQuery, "api: lng")
	}
	return geodesy.LatLng(lat, lng), nil
}

func statusFor(err error) int {
	var nf *geocode.NotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case search.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("api: encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
