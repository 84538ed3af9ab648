// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/vibesearch/ai"
	"github.com/poiesic/vibesearch/checkpoint"
	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
	"github.com/poiesic/vibesearch/retry"
)

const (
	// DefaultBatchSize is the number of records embedded and upserted
	// per call to the providers.
	DefaultBatchSize = 100

	defaultMaxAttempts    = 3
	defaultBaseDelay      = 500 * time.Millisecond
	defaultReportInterval = 100
)

// Pipeline turns a song corpus into index entries: validate, canonicalize,
// embed in batches, upsert. Batches run on a bounded worker pool; the
// commit watermark tracks the contiguous prefix of finished batches so an
// interrupted run can resume.
type Pipeline struct {
	index          index.Index
	embedder       ai.Embedder
	checkpoints    *checkpoint.Store
	pool           *ants.Pool
	batchSize      int
	maxAttempts    int
	baseDelay      time.Duration
	embeddingModel string
	dimensions     int
	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the records per embed/upsert batch.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry sets the retry policy for embed and upsert calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithCheckpointStore enables resumable ingestion. Without a store each
// run starts from the beginning of the corpus.
func WithCheckpointStore(store *checkpoint.Store) Option {
	return func(p *Pipeline) error {
		p.checkpoints = store
		return nil
	}
}

// WithSchema sets the embedding model identity and dimensionality used
// when ensuring the target collection. Defaults come from ai.DefaultConfig.
func WithSchema(embeddingModel string, dimensions int) Option {
	return func(p *Pipeline) error {
		p.embeddingModel = embeddingModel
		p.dimensions = dimensions
		return nil
	}
}

// WithProgressWriter directs progress reporting to w. Default is no
// progress output.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progressWriter = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(idx index.Index, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	defaults := ai.DefaultConfig()
	p := &Pipeline{
		index:          idx,
		embedder:       embedder,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		embeddingModel: defaults.EmbeddingModel,
		dimensions:     defaults.Dimensions,
		logger:         slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// RunOptions holds optional parameters for a single ingestion run.
type RunOptions struct {
	Limit int // cap on records read from the source; 0 means no cap
}

// Report summarizes a completed (or failed) ingestion run.
type Report struct {
	Ingested int           // records upserted by this run
	Resumed  int           // records skipped because a checkpoint covered them
	Skipped  int           // invalid records dropped during validation
	Elapsed  time.Duration
}

// Run ingests all records from source into the named collection. The
// collection is created on first use and validated against the pipeline's
// schema afterwards. A batch that exhausts its retries fails the run;
// batches already committed stay committed.
func (p *Pipeline) Run(ctx context.Context, source SongSource, collection string, opts *RunOptions) (*Report, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	started := time.Now()

	records, skipped, err := p.collect(source, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	schema := index.Schema{
		Name:           collection,
		Dimensions:     p.dimensions,
		Metric:         index.MetricCosine,
		EmbeddingModel: p.embeddingModel,
	}
	if err := p.index.EnsureCollection(ctx, schema); err != nil {
		return nil, err
	}

	resumed, err := p.resumeOffset(ctx, collection, len(records))
	if err != nil {
		return nil, err
	}
	if resumed > 0 {
		p.logger.Info("resuming from checkpoint", "collection", collection, "committed", resumed)
	}

	batches := chunkRecords(records[resumed:], p.batchSize)
	sizes := make([]int, len(batches))
	for i, batch := range batches {
		sizes[i] = len(batch)
	}
	mark := newWatermark(uint64(resumed), sizes)

	var tracker *ProgressTracker
	if p.progressWriter != nil {
		tracker = NewProgressTracker(p.progressWriter, len(records), defaultReportInterval)
		tracker.Start()
		tracker.Update(resumed)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i := range batches {
		batchIndex := i
		batch := batches[i]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			if err := p.processBatch(runCtx, collection, batch); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}

			committed, advanced := mark.commit(batchIndex)
			if advanced {
				p.saveCheckpoint(runCtx, collection, committed)
				if tracker != nil {
					tracker.Update(int(committed))
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			errOnce.Do(func() {
				firstErr = submitErr
				cancel()
			})
			break
		}
	}
	wg.Wait()

	report := &Report{
		Resumed: resumed,
		Skipped: skipped,
		Elapsed: time.Since(started),
	}
	if firstErr != nil {
		report.Ingested = int(mark.committed) - resumed
		return report, fmt.Errorf("ingest into %s: %w", collection, firstErr)
	}

	report.Ingested = len(records) - resumed
	if tracker != nil {
		tracker.Finish()
	}
	p.clearCheckpoint(ctx, collection)
	p.logger.Info("ingestion complete", "collection", collection,
		"ingested", report.Ingested, "skipped", report.Skipped, "elapsed", report.Elapsed)
	return report, nil
}

// collect drains the source, dropping invalid records. Records missing
// both artist and song cannot be identified and are logged and skipped.
func (p *Pipeline) collect(source SongSource, limit int) ([]*core.SongRecord, int, error) {
	var records []*core.SongRecord
	skipped := 0

	for limit <= 0 || len(records) < limit {
		record, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		if err := core.ValidateSongRecord(record); err != nil {
			skipped++
			p.logger.Warn("skipping invalid record", "artist", record.Artist, "song", record.Song, "err", err)
			continue
		}
		core.NormalizeSongRecord(record)
		records = append(records, record)
	}
	return records, skipped, nil
}

// processBatch embeds a batch and upserts the entries, each under the
// retry policy. Permanent failures like a schema mismatch are not
// retried; they fail the batch on the first attempt.
func (p *Pipeline) processBatch(ctx context.Context, collection string, batch []*core.SongRecord) error {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.CanonicalText()
	}

	var vectors [][]float32
	err := retry.WithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, retry.Transient, p.maxAttempts, p.baseDelay)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCountMismatch, len(vectors), len(batch))
	}

	entries := make([]*core.IndexEntry, len(batch))
	for i, record := range batch {
		entries[i] = &core.IndexEntry{
			Id:      record.ID(),
			Vector:  vectors[i],
			Payload: record.Payload(),
		}
	}

	err = retry.WithBackoff(ctx, func() error {
		return p.index.Upsert(ctx, collection, entries)
	}, retry.Transient, p.maxAttempts, p.baseDelay)
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// resumeOffset reads the checkpoint for the collection. A checkpoint
// written under a different embedding model is stale and ignored.
func (p *Pipeline) resumeOffset(ctx context.Context, collection string, total int) (int, error) {
	if p.checkpoints == nil {
		return 0, nil
	}
	cp, err := p.checkpoints.Load(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	if cp == nil {
		return 0, nil
	}
	if cp.EmbeddingModel != p.embeddingModel {
		p.logger.Warn("ignoring checkpoint from different embedding model",
			"collection", collection, "checkpointModel", cp.EmbeddingModel, "model", p.embeddingModel)
		return 0, nil
	}
	offset := int(cp.Committed)
	if offset > total {
		offset = total
	}
	return offset, nil
}

func (p *Pipeline) saveCheckpoint(ctx context.Context, collection string, committed uint64) {
	if p.checkpoints == nil {
		return
	}
	err := p.checkpoints.Save(ctx, &checkpoint.Checkpoint{
		Collection:     collection,
		EmbeddingModel: p.embeddingModel,
		Committed:      committed,
	})
	if err != nil {
		p.logger.Error("error saving checkpoint", "collection", collection, "err", err)
	}
}

func (p *Pipeline) clearCheckpoint(ctx context.Context, collection string) {
	if p.checkpoints == nil {
		return
	}
	if err := p.checkpoints.Clear(ctx, collection); err != nil {
		p.logger.Error("error clearing checkpoint", "collection", collection, "err", err)
	}
}

func chunkRecords(records []*core.SongRecord, size int) [][]*core.SongRecord {
	var batches [][]*core.SongRecord
	for len(records) > 0 {
		n := size
		if n > len(records) {
			n = len(records)
		}
		batches = append(batches, records[:n])
		records = records[n:]
	}
	return batches
}
