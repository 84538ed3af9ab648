// Package search answers free-text queries against an ingested song
// collection. A query is embedded with the same transform used during
// ingestion and matched against the index by cosine similarity.
package search
