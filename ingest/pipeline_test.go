package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/vibesearch/ai/mock"
	"github.com/poiesic/vibesearch/checkpoint"
	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
	"github.com/poiesic/vibesearch/index/memory"
)

// upsertCountingIndex counts Upsert calls passing through to the wrapped
// index.
type upsertCountingIndex struct {
	index.Index
	upserts int
}

func (ix *upsertCountingIndex) Upsert(ctx context.Context, collection string, entries []*core.IndexEntry) error {
	ix.upserts++
	return ix.Index.Upsert(ctx, collection, entries)
}

func testRecords(n int) []*core.SongRecord {
	records := make([]*core.SongRecord, n)
	for i := range records {
		records[i] = &core.SongRecord{
			Artist: "Artist " + string(rune('A'+i%26)),
			Song:   "Song " + string(rune('A'+i/26)) + string(rune('A'+i%26)),
			Lyrics: "some lyrics",
		}
	}
	return records
}

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *memory.Index) {
	t.Helper()
	ix := memory.New()
	embedder := mock.NewMockEmbedder()
	opts = append([]Option{WithSchema("all-minilm", 384), WithPoolSize(2)}, opts...)
	pipeline, err := NewPipeline(ix, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, ix
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	_, err := NewPipeline(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewPipeline(memory.New(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	pipeline, ix := newTestPipeline(t, WithBatchSize(10))

	report, err := pipeline.Run(ctx, NewSliceSource(testRecords(35)), "songs", nil)
	require.NoError(t, err)
	assert.Equal(t, 35, report.Ingested)
	assert.Equal(t, 0, report.Skipped)

	info, err := ix.Describe(ctx, "songs")
	require.NoError(t, err)
	assert.Equal(t, uint64(35), info.Points)
	assert.Equal(t, "all-minilm", info.EmbeddingModel)
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	ctx := context.Background()
	pipeline, ix := newTestPipeline(t, WithBatchSize(10))
	records := testRecords(25)

	_, err := pipeline.Run(ctx, NewSliceSource(records), "songs", nil)
	require.NoError(t, err)
	_, err = pipeline.Run(ctx, NewSliceSource(records), "songs", nil)
	require.NoError(t, err)

	info, err := ix.Describe(ctx, "songs")
	require.NoError(t, err)
	assert.Equal(t, uint64(25), info.Points, "re-ingestion must overwrite, not duplicate")
}

func TestPipeline_Run_SkipsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	pipeline, ix := newTestPipeline(t)

	records := []*core.SongRecord{
		{Artist: "ABBA", Song: "SOS"},
		{Lyrics: "unidentifiable"},
		{Artist: "  ", Song: "\t"},
		{Song: "Instrumental No. 4"},
	}
	report, err := pipeline.Run(ctx, NewSliceSource(records), "songs", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 2, report.Skipped)

	info, err := ix.Describe(ctx, "songs")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Points)
}

func TestPipeline_Run_Limit(t *testing.T) {
	ctx := context.Background()
	pipeline, ix := newTestPipeline(t)

	report, err := pipeline.Run(ctx, NewSliceSource(testRecords(30)), "songs", &RunOptions{Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, report.Ingested)

	info, err := ix.Describe(ctx, "songs")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), info.Points)
}

func TestPipeline_Run_FailedBatchKeepsCommittedWork(t *testing.T) {
	ctx := context.Background()
	ix := memory.New()

	embedErr := errors.New("embedding service down")
	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, embedErr
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, 384)
			vectors[i][0] = 1
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(ix, embedder,
		WithSchema("all-minilm", 384),
		WithBatchSize(10),
		WithPoolSize(1),
		WithRetry(1, 0))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Run(ctx, NewSliceSource(testRecords(30)), "songs", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, embedErr)

	// The first batch committed before the failure and stays committed.
	info, err := ix.Describe(ctx, "songs")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), info.Points)
}

func TestPipeline_Run_SchemaMismatchNotRetried(t *testing.T) {
	ctx := context.Background()
	ix := &upsertCountingIndex{Index: memory.New()}

	// Vectors come back with the wrong dimensionality, so every upsert
	// fails with a permanent schema error.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(ix, embedder,
		WithSchema("all-minilm", 384),
		WithBatchSize(10),
		WithPoolSize(1),
		WithRetry(3, 0))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Run(ctx, NewSliceSource(testRecords(10)), "songs", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, index.ErrSchemaMismatch)
	assert.Equal(t, 1, ix.upserts, "a schema mismatch is permanent and must fail on the first attempt")
}

func TestPipeline_Run_ResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	ix := memory.New()
	store, err := checkpoint.Open("", true)
	require.NoError(t, err)
	defer store.Close()

	embedded := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded += len(texts)
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, 384)
			vectors[i][0] = 1
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(ix, embedder,
		WithSchema("all-minilm", 384),
		WithBatchSize(10),
		WithPoolSize(1),
		WithCheckpointStore(store))
	require.NoError(t, err)
	defer pipeline.Release()

	// Simulate an interrupted run that committed the first 20 records.
	require.NoError(t, store.Save(ctx, &checkpoint.Checkpoint{
		Collection:     "songs",
		EmbeddingModel: "all-minilm",
		Committed:      20,
	}))

	records := testRecords(30)
	report, err := pipeline.Run(ctx, NewSliceSource(records), "songs", nil)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Resumed)
	assert.Equal(t, 10, report.Ingested)
	assert.Equal(t, 10, embedded, "committed records must not be re-embedded")

	// Completion clears the checkpoint so the next run starts fresh.
	cp, err := store.Load(ctx, "songs")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestPipeline_Run_IgnoresCheckpointFromOtherModel(t *testing.T) {
	ctx := context.Background()
	ix := memory.New()
	store, err := checkpoint.Open("", true)
	require.NoError(t, err)
	defer store.Close()

	pipeline, err := NewPipeline(ix, mock.NewMockEmbedder(),
		WithSchema("all-minilm", 384),
		WithCheckpointStore(store))
	require.NoError(t, err)
	defer pipeline.Release()

	require.NoError(t, store.Save(ctx, &checkpoint.Checkpoint{
		Collection:     "songs",
		EmbeddingModel: "embeddinggemma",
		Committed:      20,
	}))

	report, err := pipeline.Run(ctx, NewSliceSource(testRecords(30)), "songs", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Resumed)
	assert.Equal(t, 30, report.Ingested)
}
