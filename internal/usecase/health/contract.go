package health

import "context"

// CachePinger checks classification cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// CorpusChecker reports the size of the loaded corpus.
type CorpusChecker interface {
	Len() int
}
