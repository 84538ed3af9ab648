package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
)

func TestPayloadConversion(t *testing.T) {
	payload := core.Payload{
		Artist:      "ABBA",
		Song:        "SOS",
		Link:        "/a/abba/sos.html",
		TextPreview: "Where are those happy days",
	}

	values := toPayloadValues(payload)
	assert.Equal(t, "ABBA", values[fieldArtist].GetStringValue())
	assert.Equal(t, "SOS", values[fieldSong].GetStringValue())

	back := fromPayloadValues(values)
	assert.Equal(t, payload, back)
}

func TestFromPayloadValues_MissingFields(t *testing.T) {
	back := fromPayloadValues(nil)
	assert.Equal(t, core.Payload{}, back)
}

func TestValidateSchema(t *testing.T) {
	want := index.Schema{
		Name:           "songs",
		Dimensions:     384,
		Metric:         index.MetricCosine,
		EmbeddingModel: "all-minilm",
	}

	t.Run("matching schema", func(t *testing.T) {
		got := &index.CollectionInfo{Dimensions: 384, Metric: index.MetricCosine, EmbeddingModel: "all-minilm"}
		assert.NoError(t, validateSchema(want, got))
	})

	t.Run("legacy collection without recorded model", func(t *testing.T) {
		got := &index.CollectionInfo{Dimensions: 384, Metric: index.MetricCosine}
		assert.NoError(t, validateSchema(want, got))
	})

	t.Run("dimension drift", func(t *testing.T) {
		got := &index.CollectionInfo{Dimensions: 768, Metric: index.MetricCosine, EmbeddingModel: "all-minilm"}
		assert.ErrorIs(t, validateSchema(want, got), index.ErrSchemaMismatch)
	})

	t.Run("model drift", func(t *testing.T) {
		got := &index.CollectionInfo{Dimensions: 384, Metric: index.MetricCosine, EmbeddingModel: "embeddinggemma"}
		assert.ErrorIs(t, validateSchema(want, got), index.ErrSchemaMismatch)
	})
}
