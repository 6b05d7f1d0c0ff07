package classify

import (
	"context"

	"github.com/fleetscope/shipdex/internal/domain/classification"
	"github.com/fleetscope/shipdex/internal/domain/search/result"
	"github.com/fleetscope/shipdex/internal/usecase/search"
)

// Searcher runs the underlying vessel searches.
type Searcher interface {
	Similarity(ctx context.Context, req search.SimilarityRequest) ([]result.Group, error)
	Filter(ctx context.Context, req search.FilterRequest) ([]result.Group, error)
}

// Store persists classifications for later retrieval. Save failures are
// non-fatal; the classification is still returned to the caller.
type Store interface {
	Save(ctx context.Context, c classification.Classification) error
	Get(ctx context.Context, id string) (classification.Classification, error)
}
