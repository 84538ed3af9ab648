// Package memory provides an in-process vector index for tests and
// offline use. It implements the same contract as the Qdrant backend,
// including the collection schema checks, with exact cosine scoring.
package memory
