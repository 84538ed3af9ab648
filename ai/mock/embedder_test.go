package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()

	first, err := embedder.EmbedText(context.Background(), "midnight city")
	require.NoError(t, err)
	second, err := embedder.EmbedText(context.Background(), "midnight city")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same text must produce the same vector")
	assert.Len(t, first, 384)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestMockEmbedder_Injection(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return []float32{1, 2, 3}, nil
	}

	vec, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
	assert.Nil(t, embedder.EmbedTextFunc)
}

// The embedder is called from pool workers during ingestion, so counting
// must hold up under concurrent use.
func TestMockEmbedder_ConcurrentCallers(t *testing.T) {
	embedder := NewMockEmbedder()

	const goroutines = 8
	const callsPerGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < callsPerGoroutine; i++ {
				_, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*callsPerGoroutine, embedder.CallCount())
}
