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


package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
)

// Index is an in-process implementation of index.Index backed by maps.
// It exists for tests and offline use; scoring uses exact cosine
// similarity rather than an approximate structure.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	schema  index.Schema
	entries map[core.ID]*core.IndexEntry
}

var _ index.Index = (*Index)(nil)

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		collections: make(map[string]*collection),
	}
}

func (ix *Index) Close() error {
	return nil
}

func (ix *Index) EnsureCollection(_ context.Context, schema index.Schema) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	existing, ok := ix.collections[schema.Name]
	if !ok {
		ix.collections[schema.Name] = newCollection(schema)
		return nil
	}
	return validateSchema(schema, existing.schema)
}

func (ix *Index) CreateCollection(_ context.Context, schema index.Schema) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.collections[schema.Name]; ok {
		return fmt.Errorf("%w: %s", index.ErrCollectionExists, schema.Name)
	}
	ix.collections[schema.Name] = newCollection(schema)
	return nil
}

func (ix *Index) DeleteCollection(_ context.Context, name string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.collections, name)
	return nil
}

func (ix *Index) Upsert(_ context.Context, name string, entries []*core.IndexEntry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	coll, ok := ix.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", index.ErrNotInitialized, name)
	}
	for _, entry := range entries {
		if len(entry.Vector) != coll.schema.Dimensions {
			return fmt.Errorf("%w: entry %d has %d dimensions, collection %s expects %d",
				index.ErrSchemaMismatch, entry.Id, len(entry.Vector), name, coll.schema.Dimensions)
		}
		copied := *entry
		coll.entries[entry.Id] = &copied
	}
	return nil
}

func (ix *Index) Query(_ context.Context, name string, vector []float32, limit int) ([]*core.SearchResult, error) {
	if len(vector) == 0 {
		return nil, index.ErrEmptyVector
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	coll, ok := ix.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", index.ErrNotInitialized, name)
	}

	results := make([]*core.SearchResult, 0, len(coll.entries))
	for _, entry := range coll.entries {
		results = append(results, &core.SearchResult{
			Id:      entry.Id,
			Score:   cosineSimilarity(vector, entry.Vector),
			Payload: entry.Payload,
		})
	}

	// Descending score, ties broken by ascending id so ordering is stable.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Id < results[j].Id
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (ix *Index) FindByArtist(_ context.Context, name, artist string, limit int) ([]*core.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	coll, ok := ix.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", index.ErrNotInitialized, name)
	}

	var results []*core.SearchResult
	for _, entry := range coll.entries {
		if entry.Payload.Artist != artist {
			continue
		}
		results = append(results, &core.SearchResult{
			Id:      entry.Id,
			Payload: entry.Payload,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (ix *Index) Describe(_ context.Context, name string) (*index.CollectionInfo, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	coll, ok := ix.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", index.ErrNotInitialized, name)
	}
	return &index.CollectionInfo{
		Name:           name,
		Dimensions:     coll.schema.Dimensions,
		Metric:         coll.schema.Metric,
		EmbeddingModel: coll.schema.EmbeddingModel,
		Points:         uint64(len(coll.entries)),
	}, nil
}

func newCollection(schema index.Schema) *collection {
	return &collection{
		schema:  schema,
		entries: make(map[core.ID]*core.IndexEntry),
	}
}

func validateSchema(want, got index.Schema) error {
	if got.Dimensions != want.Dimensions {
		return fmt.Errorf("%w: collection %s has %d dimensions, expected %d",
			index.ErrSchemaMismatch, want.Name, got.Dimensions, want.Dimensions)
	}
	if got.Metric != want.Metric {
		return fmt.Errorf("%w: collection %s uses metric %q, expected %q",
			index.ErrSchemaMismatch, want.Name, got.Metric, want.Metric)
	}
	if got.EmbeddingModel != want.EmbeddingModel {
		return fmt.Errorf("%w: collection %s was built with model %q, expected %q",
			index.ErrSchemaMismatch, want.Name, got.EmbeddingModel, want.EmbeddingModel)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
