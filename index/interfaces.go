package index

import (
	"context"

	"github.com/poiesic/vibesearch/core"
)

// Metric identifies the similarity metric of a collection.
type Metric string

const (
	// MetricCosine compares vectors by the angle between them, ignoring
	// magnitude.
	MetricCosine Metric = "cosine"
)

// Schema describes a collection's fixed configuration. Dimensions and
// metric are set at creation time and cannot change for the lifetime of
// the collection; the embedding model identity is recorded so queries can
// detect drift between the model that built the index and the model
// embedding the query.
type Schema struct {
	Name           string
	Dimensions     int
	Metric         Metric
	EmbeddingModel string
}

// CollectionInfo reports the observed state of a collection.
type CollectionInfo struct {
	Name           string
	Dimensions     int
	Metric         Metric
	EmbeddingModel string
	Points         uint64
}

// Index is the vector index boundary. Implementations must be thread-safe;
// individual upserts are atomic at the entry level, so concurrent readers
// never observe a vector and payload from different records under one id.
type Index interface {
	// EnsureCollection creates the collection if it does not exist, or
	// validates the existing collection against the schema. A dimension,
	// metric, or embedding-model mismatch returns ErrSchemaMismatch;
	// re-creation on schema change must be explicit via DeleteCollection.
	EnsureCollection(ctx context.Context, schema Schema) error

	// CreateCollection creates a new collection with the given schema.
	CreateCollection(ctx context.Context, schema Schema) error

	// DeleteCollection removes a collection and its recorded schema
	// metadata. Deleting a nonexistent collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or overwrites entries keyed by their ids.
	Upsert(ctx context.Context, collection string, entries []*core.IndexEntry) error

	// Query returns up to limit nearest neighbors of the vector, ordered
	// by descending similarity score. Querying a collection that was never
	// created returns ErrNotInitialized, never an empty result set.
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]*core.SearchResult, error)

	// FindByArtist returns up to limit entries whose artist payload
	// exactly matches, ordered by ascending id. No vector scoring is
	// involved; Score is zero on every result. Returns ErrNotInitialized
	// if the collection does not exist.
	FindByArtist(ctx context.Context, collection, artist string, limit int) ([]*core.SearchResult, error)

	// Describe reports the collection's schema and entry count.
	// Returns ErrNotInitialized if the collection does not exist.
	Describe(ctx context.Context, name string) (*CollectionInfo, error)

	// Close releases the connection to the index backend.
	Close() error
}
