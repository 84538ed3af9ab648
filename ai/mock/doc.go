// Package mock provides test doubles for the ai package.
//
// MockEmbedder produces deterministic vectors derived from the input text,
// so tests get stable similarity behavior without an embedding service.
// Behavior can be overridden per test via the exported function fields.
package mock
