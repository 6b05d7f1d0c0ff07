// Package search implements vessel search: similarity scoring over the
// feature channels, exact filter search, and the filter-first flow that
// tops a short filter result up with similarity matches.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/search/filter"
	"github.com/fleetscope/shipdex/internal/domain/search/query"
	"github.com/fleetscope/shipdex/internal/domain/search/result"
	"github.com/fleetscope/shipdex/internal/domain/search/weights"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
	"github.com/fleetscope/shipdex/internal/logger"
	"github.com/fleetscope/shipdex/internal/metrics"
)

// Defaults applied when a request leaves them unset.
const (
	DefaultTopK      = 10
	DefaultMaxTopK   = 100
	DefaultThreshold = 0.3
)

// Config tunes a search service. Zero values fall back to the defaults.
type Config struct {
	// Threshold is the minimum group score a similarity result must reach.
	Threshold float64
	// MaxTopK caps the per-request result budget.
	MaxTopK int
	// DisableFill turns the similarity fill for short filter results off
	// globally, regardless of what requests ask for.
	DisableFill bool
}

// Service runs searches against one fitted feature index.
type Service struct {
	idx         *index.Index
	threshold   float64
	maxTopK     int
	fillEnabled bool
}

// New creates a search service.
func New(idx *index.Index, cfg Config) *Service {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = DefaultMaxTopK
	}
	return &Service{
		idx:         idx,
		threshold:   cfg.Threshold,
		maxTopK:     cfg.MaxTopK,
		fillEnabled: !cfg.DisableFill,
	}
}

// SimilarityRequest describes one similarity search.
type SimilarityRequest struct {
	// Features is the raw feature map; keys follow the corpus schema,
	// numeric fields additionally accept _min/_max suffixed bounds.
	Features map[string]any
	// TopK bounds the number of result groups.
	TopK int
	// Weights overrides per-channel blend weights by name.
	Weights map[string]float64
}

// FilterRequest describes one filter search.
type FilterRequest struct {
	// Filters holds suffix-encoded predicates ("length_metres__gte").
	Filters map[string]any
	// TopK bounds the number of result groups.
	TopK int
	// FillWithSimilarity tops up short filter results with similarity
	// matches derived from the filters.
	FillWithSimilarity bool
	// SimilarityFeatures, when set, replaces the derived features for
	// the fill query.
	SimilarityFeatures map[string]any
	// TextSearch adds name-like fields to the fill query.
	TextSearch map[string]string
	// Weights overrides per-channel blend weights for the fill query.
	Weights map[string]float64
}

// Similarity scores the whole corpus against a feature map and returns
// the aggregated top groups.
func (s *Service) Similarity(ctx context.Context, req SimilarityRequest) ([]result.Group, error) {
	start := time.Now()
	w, err := weights.FromMap(req.Weights)
	if err != nil {
		return nil, fmt.Errorf("parse weights: %w", err)
	}
	q, err := normalize(s.idx, req.Features)
	if err != nil {
		return nil, err
	}

	groups := s.similarity(ctx, q, w, s.boundTopK(req.TopK), nil)
	s.observe(ctx, "similarity", start, len(groups))
	return groups, nil
}

// Filter evaluates exact and range predicates over the corpus. When the
// result has fewer groups than topK and fill is requested, the remainder
// is filled with similarity matches for the same criteria, excluding the
// vessels the filters already found.
func (s *Service) Filter(ctx context.Context, req FilterRequest) ([]result.Group, error) {
	start := time.Now()
	preds, err := filter.Parse(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("parse filters: %w", err)
	}
	topK := s.boundTopK(req.TopK)

	cands := make([]candidate, 0, 64)
	for i := 0; i < s.idx.Len(); i++ {
		rec := s.idx.Corpus().Record(i)
		if filter.MatchesAll(preds, rec) {
			cands = append(cands, candidate{record: rec, score: 1, match: result.Filter})
		}
	}
	groups := aggregate(cands, topK, s.threshold, nil)

	if req.FillWithSimilarity && s.fillEnabled && len(groups) < topK {
		groups = s.fill(ctx, req, preds, groups, topK)
	}

	for i := range groups {
		groups[i].Rank = i + 1
	}
	s.observe(ctx, "filter", start, len(groups))
	return groups, nil
}

// fill appends similarity matches for the filter criteria, skipping
// every group the filters already matched.
func (s *Service) fill(
	ctx context.Context, req FilterRequest, preds []filter.Predicate,
	groups []result.Group, topK int,
) []result.Group {
	w, err := weights.FromMap(req.Weights)
	if err != nil {
		logger.FromContext(ctx).Warn("fill skipped", zap.Error(err))
		return groups
	}

	features := make(map[string]any)
	if len(req.SimilarityFeatures) > 0 {
		for k, v := range req.SimilarityFeatures {
			features[k] = v
		}
	} else {
		features = deriveFeatures(preds)
	}
	for field, text := range req.TextSearch {
		if vessel.IsNameField(field) && text != "" {
			features[field] = text
		}
	}

	q, err := normalize(s.idx, features)
	if err != nil {
		// Nothing similarity can work with; the filter result stands.
		if !errors.Is(err, domain.ErrEmptyQuery) {
			logger.FromContext(ctx).Warn("fill skipped", zap.Error(err))
		}
		return groups
	}

	exclude := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		exclude[g.GroupKey] = struct{}{}
	}
	extra := s.similarity(ctx, q, w, topK-len(groups), exclude)
	if len(extra) > 0 {
		metrics.SimilarityFillTotal.Inc()
	}
	return append(groups, extra...)
}

// SimilarToRecord scores the corpus against an existing record and
// returns the closest groups, excluding the record's own group.
func (s *Service) SimilarToRecord(ctx context.Context, recordIndex, topK int) ([]result.Group, error) {
	start := time.Now()
	if recordIndex < 0 || recordIndex >= s.idx.Len() {
		return nil, fmt.Errorf("record %d: %w", recordIndex, domain.ErrRecordNotFound)
	}

	scores := scorer{idx: s.idx}.scoreRecord(recordIndex, weights.Default())
	self := s.idx.Corpus().Record(recordIndex).GroupKey()
	cands := s.candidates(scores, map[string]struct{}{self: {}})
	groups := aggregate(cands, s.boundTopK(topK), s.threshold, nil)

	s.observe(ctx, "record", start, len(groups))
	return groups, nil
}

// similarity runs the channel scorer and aggregates the result.
func (s *Service) similarity(
	ctx context.Context, q *query.Normalized, w weights.Weights,
	topK int, exclude map[string]struct{},
) []result.Group {
	scores, active := scorer{idx: s.idx}.score(q, w)
	logger.FromContext(ctx).Debug("similarity scored",
		zap.Int("records", len(scores)),
		zap.Any("channels", active),
	)
	return aggregate(s.candidates(scores, nil), topK, s.threshold, exclude)
}

// candidates converts a score vector into aggregation input, dropping
// hard-excluded records and ordering by score descending. Every other
// record flows through so a group can absorb the names and counts of its
// low-scoring siblings; the threshold cut happens per group during
// aggregation. Ties keep corpus order so results are stable across runs.
func (s *Service) candidates(scores []float64, skipGroups map[string]struct{}) []candidate {
	cands := make([]candidate, 0, len(scores))
	for i, sc := range scores {
		if sc < 0 {
			continue
		}
		rec := s.idx.Corpus().Record(i)
		if _, skip := skipGroups[rec.GroupKey()]; skip {
			continue
		}
		cands = append(cands, candidate{record: rec, score: sc, match: result.Similarity})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	return cands
}

// deriveFeatures turns filter predicates into similarity features:
// equality predicates carry their value over, gte/lte pairs collapse to
// their midpoint, strict bounds and substring predicates are skipped.
func deriveFeatures(preds []filter.Predicate) map[string]any {
	features := make(map[string]any)
	ranges := make(map[string]query.Range)

	for _, p := range preds {
		switch p.Op() {
		case filter.Eq:
			if n, ok := p.Num(); ok && vessel.IsNumericField(p.Key()) {
				features[p.Key()] = n
			} else if p.Str() != "" {
				features[p.Key()] = p.Str()
			} else if n, ok := p.Num(); ok {
				features[p.Key()] = n
			}
		case filter.Gte:
			if n, ok := p.Num(); ok {
				r := ranges[p.Key()]
				v := n
				r.Min = &v
				ranges[p.Key()] = r
			}
		case filter.Lte:
			if n, ok := p.Num(); ok {
				r := ranges[p.Key()]
				v := n
				r.Max = &v
				ranges[p.Key()] = r
			}
		}
	}
	for field, r := range ranges {
		if mid, ok := r.Midpoint(); ok && vessel.IsNumericField(field) {
			features[field] = mid
		}
	}
	return features
}

func (s *Service) observe(ctx context.Context, mode string, start time.Time, groups int) {
	metrics.SearchesTotal.WithLabelValues(mode).Inc()
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.SearchResultsReturned.WithLabelValues(mode).Observe(float64(groups))
	logger.FromContext(ctx).Debug("search done",
		zap.String("mode", mode),
		zap.Int("groups", groups),
		zap.Duration("took", time.Since(start)),
	)
}

// boundTopK applies the default budget and the configured ceiling.
func (s *Service) boundTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}
