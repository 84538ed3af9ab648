// Package ingest reads a song corpus, embeds canonical text for each
// record, and upserts the resulting entries into a vector index.
//
// Batches are processed on a bounded worker pool. Because batches can
// finish out of order, resume bookkeeping only ever records the record
// count of the contiguous prefix of committed batches. With a checkpoint
// store attached, an interrupted run picks up where that prefix ended.
package ingest
