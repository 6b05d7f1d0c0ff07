// Package shipdex embeds the vessel similarity engine in-process: load a
// corpus file once, then run similarity, filter and classification
// queries against it without an HTTP server.
package shipdex

import (
	"context"
	"fmt"

	"github.com/fleetscope/shipdex/internal/corpus"
	"github.com/fleetscope/shipdex/internal/domain/search/result"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
	cataloguc "github.com/fleetscope/shipdex/internal/usecase/catalog"
	classifyuc "github.com/fleetscope/shipdex/internal/usecase/classify"
	healthuc "github.com/fleetscope/shipdex/internal/usecase/health"
	searchuc "github.com/fleetscope/shipdex/internal/usecase/search"
)

// Group is one aggregated search result.
type Group = result.Group

// Record is one corpus row.
type Record = vessel.Record

// Statistics summarizes the loaded corpus.
type Statistics = cataloguc.Statistics

// Classification is the outcome of a Classify call.
type Classification = classifyuc.Response

// Health is an aggregated component health report.
type Health = healthuc.Report

// Client is the in-process shipdex entry point. Safe for concurrent use
// after Open returns.
type Client struct {
	idx      *index.Index
	search   *searchuc.Service
	classify *classifyuc.Service
	catalog  *cataloguc.Service
	health   *healthuc.Service
}

type clientConfig struct {
	groupColumn string
	threshold   float64
	topK        int
}

// Option configures an Open call.
type Option func(*clientConfig)

// WithGroupColumn names the source column carrying the logical vessel
// key. Without it, aggregation falls back to the class|country|type
// tuple.
func WithGroupColumn(col string) Option {
	return func(c *clientConfig) { c.groupColumn = col }
}

// WithThreshold overrides the similarity acceptance threshold.
func WithThreshold(t float64) Option {
	return func(c *clientConfig) { c.threshold = t }
}

// WithTopK overrides the default result budget.
func WithTopK(k int) Option {
	return func(c *clientConfig) { c.topK = k }
}

// Open loads a corpus file (.csv or .parquet), fits the feature index
// and wires the query services.
func Open(path string, opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	crp, err := corpus.Load(path, corpus.Options{GroupColumn: cfg.groupColumn})
	if err != nil {
		return nil, fmt.Errorf("shipdex: %w", err)
	}
	idx, err := index.Build(crp)
	if err != nil {
		return nil, fmt.Errorf("shipdex: build index: %w", err)
	}

	searchSvc := searchuc.New(idx, searchuc.Config{Threshold: cfg.threshold})
	return &Client{
		idx:      idx,
		search:   searchSvc,
		classify: classifyuc.New(searchSvc, nil, cfg.topK, cfg.threshold),
		catalog:  cataloguc.New(idx),
		health:   healthuc.New(idx, nil),
	}, nil
}

// Len returns the number of loaded records.
func (c *Client) Len() int { return c.idx.Len() }

// Similarity scores the corpus against a feature map. Numeric fields
// accept single values, [min,max] pairs or _min/_max suffixed bounds.
func (c *Client) Similarity(ctx context.Context, features map[string]any, topK int) ([]Group, error) {
	return c.search.Similarity(ctx, searchuc.SimilarityRequest{Features: features, TopK: topK})
}

// Filter evaluates suffix-encoded predicates ("length_metres__gte")
// conjunctively over the corpus.
func (c *Client) Filter(ctx context.Context, filters map[string]any, topK int) ([]Group, error) {
	return c.search.Filter(ctx, searchuc.FilterRequest{Filters: filters, TopK: topK})
}

// SimilarTo finds the groups closest to an existing record, excluding
// the record's own group.
func (c *Client) SimilarTo(ctx context.Context, recordIndex, topK int) ([]Group, error) {
	return c.search.SimilarToRecord(ctx, recordIndex, topK)
}

// Classify runs the full classification flow on a raw payload: cleaning,
// filter/similarity partitioning, search routing and report generation.
// Classifications are not persisted in embedded mode.
func (c *Client) Classify(ctx context.Context, payload map[string]any) (*Classification, error) {
	return c.classify.Classify(ctx, payload)
}

// Vessel returns the record at the given corpus index.
func (c *Client) Vessel(ctx context.Context, recordIndex int) (*Record, error) {
	return c.catalog.Vessel(ctx, recordIndex)
}

// Statistics computes corpus-wide counts and distinct value lists.
func (c *Client) Statistics(ctx context.Context) Statistics {
	return c.catalog.Statistics(ctx)
}

// Categories returns the distinct values of every categorical query
// field.
func (c *Client) Categories(ctx context.Context) map[string][]string {
	return c.catalog.Categories(ctx)
}

// Health reports component health. In embedded mode only the corpus is
// checked.
func (c *Client) Health(ctx context.Context) Health {
	return c.health.Check(ctx)
}
