package ingest

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match batch size")
)
