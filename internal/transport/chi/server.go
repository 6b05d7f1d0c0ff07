// Package chi exposes the shipdex services over HTTP: JSON handlers,
// bearer auth and the sentinel-to-status error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/classification"
	"github.com/fleetscope/shipdex/internal/domain/search/result"
	cataloguc "github.com/fleetscope/shipdex/internal/usecase/catalog"
	classifyuc "github.com/fleetscope/shipdex/internal/usecase/classify"
	healthuc "github.com/fleetscope/shipdex/internal/usecase/health"
	searchuc "github.com/fleetscope/shipdex/internal/usecase/search"
)

// Error codes returned to clients.
const (
	codeBadRequest             = "bad_request"
	codeEmptyQuery             = "empty_query"
	codeRecordNotFound         = "record_not_found"
	codeClassificationNotFound = "classification_not_found"
	codeCacheUnavailable       = "cache_unavailable"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the shipdex API.
type Server struct {
	search        *searchuc.Service
	classify      *classifyuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	classify *classifyuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		classify: classify,
		catalog:  catalog,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrClassificationNotFound, http.StatusNotFound, codeClassificationNotFound),
		sentinelHandler(domain.ErrCacheUnavailable, http.StatusServiceUnavailable, codeCacheUnavailable),
	}
	return s
}

// Register mounts every route on the given router. Middleware is wired
// by the caller.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/classify", s.Classify)
		r.Get("/classifications/{id}", s.GetClassification)
		r.Post("/search/similarity", s.SimilaritySearch)
		r.Post("/search/filter", s.FilterSearch)
		r.Get("/vessels/{id}", s.GetVessel)
		r.Get("/vessels/{id}/similar", s.SimilarVessels)
		r.Get("/statistics", s.Statistics)
		r.Get("/categories", s.Categories)
	})
}

// Classify handles POST /api/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.classify.Classify(r.Context(), payload)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		Classification:    resp.Classification,
		ProcessingTimeSec: resp.ProcessingTime.Seconds(),
	})
}

// GetClassification handles GET /api/classifications/{id}.
func (s *Server) GetClassification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "classification id is required")
		return
	}

	c, err := s.classify.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// SimilaritySearch handles POST /api/search/similarity.
func (s *Server) SimilaritySearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Features map[string]any     `json:"features"`
		TopK     int                `json:"top_k"`
		Weights  map[string]float64 `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	groups, err := s.search.Similarity(r.Context(), searchuc.SimilarityRequest{
		Features: req.Features,
		TopK:     req.TopK,
		Weights:  req.Weights,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(groups))
}

// FilterSearch handles POST /api/search/filter.
func (s *Server) FilterSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters            map[string]any     `json:"filters"`
		TopK               int                `json:"top_k"`
		FillWithSimilarity bool               `json:"fill_with_similarity"`
		SimilarityFeatures map[string]any     `json:"similarity_features"`
		TextSearch         map[string]string  `json:"text_search"`
		Weights            map[string]float64 `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Filters) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "filters are required")
		return
	}

	groups, err := s.search.Filter(r.Context(), searchuc.FilterRequest{
		Filters:            req.Filters,
		TopK:               req.TopK,
		FillWithSimilarity: req.FillWithSimilarity,
		SimilarityFeatures: req.SimilarityFeatures,
		TextSearch:         req.TextSearch,
		Weights:            req.Weights,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(groups))
}

// GetVessel handles GET /api/vessels/{id}.
func (s *Server) GetVessel(w http.ResponseWriter, r *http.Request) {
	idx, ok := vesselID(w, r)
	if !ok {
		return
	}

	rec, err := s.catalog.Vessel(r.Context(), idx)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vesselPayload{
		RecordIndex: rec.RecordIndex,
		GroupID:     rec.GroupID,
		Country:     rec.Country,
		ShipName:    rec.ShipName,
		HullNumber:  rec.HullNumber,
		ShipClass:   rec.ShipClass,
		ShipType:    rec.ShipType,
		ShipRole:    rec.ShipRole,
		Pages:       rec.PageRange(),
		Numeric:     rec.Numeric,
		Categorical: rec.Categorical,
		Binary:      rec.Binary,
	})
}

// SimilarVessels handles GET /api/vessels/{id}/similar.
func (s *Server) SimilarVessels(w http.ResponseWriter, r *http.Request) {
	idx, ok := vesselID(w, r)
	if !ok {
		return
	}

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be a positive integer")
			return
		}
		topK = k
	}

	groups, err := s.search.SimilarToRecord(r.Context(), idx, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(groups))
}

// Statistics handles GET /api/statistics.
func (s *Server) Statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Statistics(r.Context()))
}

// Categories handles GET /api/categories.
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories(r.Context()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthPayload{
		Status:      string(report.Status),
		Checks:      report.Checks,
		ShipsLoaded: report.Ships,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type healthPayload struct {
	Status      string                          `json:"status"`
	Checks      map[string]healthuc.CheckResult `json:"checks"`
	ShipsLoaded int                             `json:"ships_loaded"`
}

type classifyResponse struct {
	classification.Classification
	ProcessingTimeSec float64 `json:"processing_time_seconds"`
}

type vesselPayload struct {
	RecordIndex int                `json:"record_index"`
	GroupID     string             `json:"group_id,omitempty"`
	Country     string             `json:"country"`
	ShipName    string             `json:"ship_name"`
	HullNumber  string             `json:"hull_number"`
	ShipClass   string             `json:"ship_class"`
	ShipType    string             `json:"ship_type"`
	ShipRole    string             `json:"ship_role"`
	Pages       string             `json:"pages"`
	Numeric     map[string]float64 `json:"numeric"`
	Categorical map[string]string  `json:"categorical"`
	Binary      map[string]int     `json:"binary"`
}

type groupPayload struct {
	Rank            int      `json:"rank"`
	SimilarityScore float64  `json:"similarity_score"`
	MatchType       string   `json:"match_type"`
	GroupKey        string   `json:"group_key"`
	Name            string   `json:"name"`
	ShipNames       []string `json:"ship_names"`
	HullNumbers     []string `json:"hull_numbers"`
	ShipCount       int      `json:"ship_count"`
	Country         string   `json:"country"`
	ShipClass       string   `json:"ship_class"`
	ShipType        string   `json:"ship_type"`
	ShipRole        string   `json:"ship_role"`
	LengthMetres    float64  `json:"length_metres"`
	BeamMetres      float64  `json:"beam_metres"`
	DraughtMetres   float64  `json:"draught_metres"`
	Pages           string   `json:"pages"`
	RecordIndex     int      `json:"record_index"`
}

type searchPayload struct {
	Results []groupPayload `json:"results"`
	Count   int            `json:"count"`
}

// searchResponse converts result groups to the wire shape. Scores go out
// as percentages rounded to two decimals.
func searchResponse(groups []result.Group) searchPayload {
	out := make([]groupPayload, len(groups))
	for i, g := range groups {
		out[i] = groupPayload{
			Rank:            g.Rank,
			SimilarityScore: math.Round(g.Score*10000) / 100,
			MatchType:       string(g.MatchType),
			GroupKey:        g.GroupKey,
			Name:            g.CombinedName(),
			ShipNames:       g.Names,
			HullNumbers:     g.HullNumbers,
			ShipCount:       g.RecordCount,
			Country:         g.Country,
			ShipClass:       g.ShipClass,
			ShipType:        g.ShipType,
			ShipRole:        g.ShipRole,
			LengthMetres:    g.Length,
			BeamMetres:      g.Beam,
			DraughtMetres:   g.Draught,
			Pages:           g.PageRange,
			RecordIndex:     g.RecordIndex,
		}
	}
	return searchPayload{Results: out, Count: len(out)}
}

func vesselID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "vessel id must be an integer record index")
		return 0, false
	}
	return idx, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrEmptyQuery,
		domain.ErrRecordNotFound,
		domain.ErrClassificationNotFound,
		domain.ErrCacheUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
