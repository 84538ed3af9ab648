// Package checkpoint persists ingestion progress so interrupted runs can
// resume without re-embedding committed records. Checkpoints are small
// MUS-encoded records keyed by collection name in a BadgerDB database.
package checkpoint
