package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/vibesearch/ai"
	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
	"github.com/poiesic/vibesearch/retry"
)

const (
	// DefaultCollection is the collection searched when none is configured.
	DefaultCollection = "songs"

	// MaxLimit caps the number of results a single query may request.
	MaxLimit = 50

	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Searcher answers free-text queries with ranked song matches. It is
// stateless per request; concurrent searches are independent. Provider
// calls run under a bounded retry policy; permanent errors like a schema
// mismatch fail on the first attempt.
type Searcher struct {
	index          index.Index
	embedder       ai.Embedder
	collection     string
	embeddingModel string
	maxAttempts    int
	baseDelay      time.Duration
	logger         *slog.Logger

	mu        sync.Mutex
	validated bool
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithCollection sets the collection to search.
// Default is DefaultCollection.
func WithCollection(name string) Option {
	return func(s *Searcher) error {
		if name != "" {
			s.collection = name
		}
		return nil
	}
}

// WithEmbeddingModel sets the embedding model identity the searcher
// expects the collection to have been built with. Default comes from
// ai.DefaultConfig.
func WithEmbeddingModel(model string) Option {
	return func(s *Searcher) error {
		if model != "" {
			s.embeddingModel = model
		}
		return nil
	}
}

// WithRetry sets the retry policy for embed and index calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Searcher) error {
		if maxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		s.maxAttempts = maxAttempts
		s.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(idx index.Index, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		index:          idx,
		embedder:       embedder,
		collection:     DefaultCollection,
		embeddingModel: ai.DefaultConfig().EmbeddingModel,
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		logger:         slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to limit songs ranked by similarity to the query.
// Results are ordered by descending score with ties broken by ascending id.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, nil)
}

// SearchWithMonitor is Search with stage callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	// Validation happens before any provider call so invalid input never
	// costs an embedding request.
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	monitor.Start(query)

	if err := s.validateCollection(ctx); err != nil {
		return nil, err
	}

	var embedding []float32
	err := retry.WithBackoff(ctx, func() error {
		var embedErr error
		embedding, embedErr = s.embedder.EmbedText(ctx, query)
		return embedErr
	}, retry.Transient, s.maxAttempts, s.baseDelay)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	var results []*core.SearchResult
	err = retry.WithBackoff(ctx, func() error {
		var queryErr error
		results, queryErr = s.index.Query(ctx, s.collection, embedding, limit)
		return queryErr
	}, retry.Transient, s.maxAttempts, s.baseDelay)
	if err != nil {
		s.logger.Error("error querying index", "collection", s.collection, "err", err)
		return nil, err
	}

	// The index returns results in score order; re-sorting here pins the
	// tie-break on id, which backends do not guarantee.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Id < results[j].Id
	})

	monitor.Finish(results)
	return results, nil
}

// ByArtist returns up to limit songs whose artist exactly matches,
// ordered by ascending id. This is a payload lookup; no embedding is
// generated and no scoring happens, so Score is zero on every result.
func (s *Searcher) ByArtist(ctx context.Context, artist string, limit int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(artist) == "" {
		return nil, ErrEmptyArtist
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if err := s.validateCollection(ctx); err != nil {
		return nil, err
	}

	var results []*core.SearchResult
	err := retry.WithBackoff(ctx, func() error {
		var findErr error
		results, findErr = s.index.FindByArtist(ctx, s.collection, artist, limit)
		return findErr
	}, retry.Transient, s.maxAttempts, s.baseDelay)
	if err != nil {
		s.logger.Error("error looking up artist", "collection", s.collection, "artist", artist, "err", err)
		return nil, err
	}
	return results, nil
}

// Collection returns the collection this searcher queries.
func (s *Searcher) Collection() string {
	return s.collection
}

// validateCollection checks the collection's recorded embedding model
// against the searcher's configured model. The check runs once per
// searcher; drift is permanent until the collection is rebuilt.
func (s *Searcher) validateCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validated {
		return nil
	}

	var info *index.CollectionInfo
	err := retry.WithBackoff(ctx, func() error {
		var describeErr error
		info, describeErr = s.index.Describe(ctx, s.collection)
		return describeErr
	}, retry.Transient, s.maxAttempts, s.baseDelay)
	if err != nil {
		return err
	}
	if info.EmbeddingModel != "" && info.EmbeddingModel != s.embeddingModel {
		return fmt.Errorf("%w: collection %s was built with model %q, searcher uses %q",
			index.ErrSchemaMismatch, s.collection, info.EmbeddingModel, s.embeddingModel)
	}

	s.validated = true
	return nil
}
