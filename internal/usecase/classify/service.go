// Package classify implements the classification flow: clean the raw
// payload, partition it into filter predicates and similarity features,
// route it to the right search, and persist the formatted outcome with
// its report.
package classify

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/classification"
	"github.com/fleetscope/shipdex/internal/domain/search/result"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/logger"
	"github.com/fleetscope/shipdex/internal/metrics"
	"github.com/fleetscope/shipdex/internal/usecase/search"
)

// Service coordinates classification requests.
type Service struct {
	searcher  Searcher
	store     Store
	topK      int
	threshold float64
}

// New creates a classify service. store can be nil, disabling retrieval.
func New(searcher Searcher, store Store, defaultTopK int, threshold float64) *Service {
	if defaultTopK <= 0 {
		defaultTopK = search.DefaultTopK
	}
	if threshold <= 0 {
		threshold = search.DefaultThreshold
	}
	return &Service{searcher: searcher, store: store, topK: defaultTopK, threshold: threshold}
}

// Response is the classify outcome returned to the transport layer.
type Response struct {
	Classification classification.Classification
	ProcessingTime time.Duration
}

// Classify runs one classification request end to end.
func (s *Service) Classify(ctx context.Context, payload map[string]any) (*Response, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	cleaned := cleanFeatures(payload)
	topK := popInt(cleaned, "top_k", s.topK)
	weightOverrides := popWeights(cleaned)
	// Aggregation is always on; the flag survives in old payloads.
	delete(cleaned, "aggregate_by_index")

	parts := partition(cleaned)

	var (
		groups []result.Group
		method string
		err    error
	)
	switch {
	case parts.hasRanges || len(parts.textSearch) > 0 || (len(parts.filters) > 0 && len(parts.similarity) == 0):
		method = "filter"
		groups, err = s.searcher.Filter(ctx, search.FilterRequest{
			Filters:            parts.filters,
			TopK:               topK,
			FillWithSimilarity: true,
			SimilarityFeatures: parts.similarity,
			TextSearch:         parts.textSearch,
			Weights:            weightOverrides,
		})
	case len(parts.similarity) > 0:
		method = "similarity"
		features := make(map[string]any, len(parts.similarity)+1)
		for k, v := range parts.similarity {
			features[k] = v
		}
		// An exact country criterion becomes a hard pre-filter.
		if country, ok := parts.filters[vessel.FieldCountry]; ok {
			features[vessel.FieldCountry] = country
		}
		groups, err = s.searcher.Similarity(ctx, search.SimilarityRequest{
			Features: features,
			TopK:     topK,
			Weights:  weightOverrides,
		})
	default:
		metrics.ClassificationsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("no valid search criteria: %w", domain.ErrEmptyQuery)
	}
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s search: %w", method, err)
	}

	matches := formatMatches(groups)
	allFeatures := make(map[string]any, len(parts.filters)+len(parts.similarity))
	for k, v := range parts.filters {
		allFeatures[k] = v
	}
	for k, v := range parts.similarity {
		allFeatures[k] = v
	}

	c := classification.Classification{
		ID:                 uuid.NewString(),
		QueryFeatures:      allFeatures,
		Filters:            parts.filters,
		SimilarityFeatures: parts.similarity,
		SearchMethod:       method,
		Matches:            matches,
		ReportText:         buildReport(allFeatures, matches, s.threshold, topK),
		CreatedAt:          time.Now().UTC(),
	}

	if s.store != nil {
		if saveErr := s.store.Save(ctx, c); saveErr != nil {
			// The classification is still valid without storage.
			log.Warn("classification not stored", zap.String("id", c.ID), zap.Error(saveErr))
		}
	}

	metrics.ClassificationsTotal.WithLabelValues("ok").Inc()
	log.Info("classification done",
		zap.String("id", c.ID),
		zap.String("method", method),
		zap.Int("matches", len(matches)),
	)
	return &Response{Classification: c, ProcessingTime: time.Since(start)}, nil
}

// Get retrieves a stored classification by id.
func (s *Service) Get(ctx context.Context, id string) (classification.Classification, error) {
	if s.store == nil {
		return classification.Classification{}, domain.ErrClassificationNotFound
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return classification.Classification{}, fmt.Errorf("get classification %s: %w", id, err)
	}
	return c, nil
}

// partitioned is a cleaned payload split by search role.
type partitioned struct {
	filters    map[string]any
	similarity map[string]any
	textSearch map[string]string
	hasRanges  bool
}

// partition routes each cleaned feature: explicit bounds become range
// predicates, name-like fields go to fuzzy text search (and similarity),
// the exact-match fields become filters, everything else is a similarity
// feature.
func partition(cleaned map[string]any) partitioned {
	p := partitioned{
		filters:    make(map[string]any),
		similarity: make(map[string]any),
		textSearch: make(map[string]string),
	}
	for key, value := range cleaned {
		if base, ok := strings.CutSuffix(key, "_min"); ok && vessel.IsNumericField(base) {
			p.filters[base+"__gte"] = value
			p.hasRanges = true
			continue
		}
		if base, ok := strings.CutSuffix(key, "_max"); ok && vessel.IsNumericField(base) {
			p.filters[base+"__lte"] = value
			p.hasRanges = true
			continue
		}
		switch {
		case vessel.IsNameField(key):
			if s, ok := value.(string); ok {
				p.textSearch[key] = s
			}
			p.similarity[key] = value
		case isFilterField(key):
			p.filters[key] = value
		default:
			p.similarity[key] = value
		}
	}
	return p
}

func isFilterField(key string) bool {
	for _, f := range vessel.FilterFields {
		if f == key {
			return true
		}
	}
	return false
}

// cleanFeatures drops empty values and coerces loosely-typed payload
// values: truthy strings become booleans, numeric strings become
// numbers, booleans on range bounds (a known client quirk) are dropped.
func cleanFeatures(payload map[string]any) map[string]any {
	cleaned := make(map[string]any, len(payload))
	for key, value := range payload {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		if list, ok := value.([]any); ok && len(list) == 0 {
			continue
		}

		if isRangeBoundKey(key) {
			if _, isBool := value.(bool); isBool {
				continue
			}
			if f, ok := toFloat(value); ok {
				cleaned[key] = f
			}
			continue
		}

		if s, ok := value.(string); ok {
			switch strings.ToLower(s) {
			case "true", "yes":
				cleaned[key] = true
				continue
			case "false", "no":
				cleaned[key] = false
				continue
			}
			// Name-like fields keep digit-only strings as text.
			if !vessel.IsNameField(key) {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					cleaned[key] = f
					continue
				}
			}
		}
		cleaned[key] = value
	}
	return cleaned
}

func isRangeBoundKey(key string) bool {
	if base, ok := strings.CutSuffix(key, "_min"); ok {
		return vessel.IsNumericField(base)
	}
	if base, ok := strings.CutSuffix(key, "_max"); ok {
		return vessel.IsNumericField(base)
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func popInt(m map[string]any, key string, fallback int) int {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	delete(m, key)
	if f, ok := toFloat(v); ok && f > 0 {
		return int(f)
	}
	return fallback
}

func popWeights(m map[string]any) map[string]float64 {
	v, ok := m["weights"]
	if !ok {
		return nil
	}
	delete(m, "weights")
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, wv := range raw {
		if f, ok := toFloat(wv); ok {
			out[k] = f
		}
	}
	return out
}

// formatMatches converts result groups into presentation matches with
// percentage scores.
func formatMatches(groups []result.Group) []classification.Match {
	matches := make([]classification.Match, len(groups))
	for i, g := range groups {
		matches[i] = classification.Match{
			Rank:            g.Rank,
			SimilarityScore: roundPercent(g.Score),
			ShipCount:       g.RecordCount,
			MatchType:       string(g.MatchType),
			Name:            g.CombinedName(),
			ShipNames:       g.Names,
			HullNumbers:     g.HullNumbers,
			Country:         g.Country,
			ShipClass:       g.ShipClass,
			ShipType:        g.ShipType,
			ShipRole:        g.ShipRole,
			LengthMetres:    g.Length,
			BeamMetres:      g.Beam,
			DraughtMetres:   g.Draught,
			Pages:           g.PageRange,
		}
	}
	return matches
}

func roundPercent(score float64) float64 {
	return math.Round(score*10000) / 100
}
