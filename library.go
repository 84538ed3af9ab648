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


package vibesearch

import (
	"log/slog"

	"github.com/poiesic/vibesearch/ai"
	"github.com/poiesic/vibesearch/ai/openai"
	"github.com/poiesic/vibesearch/checkpoint"
	"github.com/poiesic/vibesearch/index"
	"github.com/poiesic/vibesearch/index/qdrant"
	"github.com/poiesic/vibesearch/ingest"
	"github.com/poiesic/vibesearch/search"
)

// Library wires the vector index and the embedder into pipeline and
// searcher constructors. All dependencies are explicit; nothing here is
// a singleton.
type Library struct {
	index       index.Index
	embedder    ai.Embedder
	checkpoints *checkpoint.Store
	aiConfig    *ai.Config
	logger      *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig       *ai.Config
	qdrantConfig   *qdrant.Config
	checkpointPath string
}

// WithAIConfig overrides the embedding provider configuration.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithQdrantConfig overrides the vector index connection settings.
func WithQdrantConfig(config *qdrant.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.qdrantConfig = config
		}
	}
}

// WithCheckpointPath enables resumable ingestion, storing checkpoints in
// a BadgerDB database at the given directory.
func WithCheckpointPath(path string) LibraryOption {
	return func(o *libraryOptions) {
		o.checkpointPath = path
	}
}

// NewLibrary connects to the vector index and the embedding provider.
func NewLibrary(opts ...LibraryOption) (*Library, error) {
	// Apply options
	options := &libraryOptions{
		aiConfig:     ai.DefaultConfig(),
		qdrantConfig: qdrant.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	options.aiConfig.Normalize()
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	idx, err := qdrant.New(options.qdrantConfig)
	if err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		idx.Close()
		return nil, err
	}

	var checkpoints *checkpoint.Store
	if options.checkpointPath != "" {
		checkpoints, err = checkpoint.Open(options.checkpointPath, false)
		if err != nil {
			idx.Close()
			return nil, err
		}
	}

	return &Library{
		index:       idx,
		embedder:    embedder,
		checkpoints: checkpoints,
		aiConfig:    options.aiConfig,
		logger:      slog.Default(),
	}, nil
}

func (l *Library) Close() error {
	if l.checkpoints != nil {
		if err := l.checkpoints.Close(); err != nil {
			l.logger.Error("error closing checkpoint store", "err", err)
		}
	}
	if err := l.index.Close(); err != nil {
		l.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}

// Index returns the vector index handle.
func (l *Library) Index() index.Index {
	return l.index
}

// Embedder returns the embedding provider.
func (l *Library) Embedder() ai.Embedder {
	return l.embedder
}

// NewIngestPipeline builds an ingestion pipeline bound to this library's
// index, embedder, and checkpoint store. Extra options are applied after
// the library defaults.
func (l *Library) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	defaults := []ingest.Option{
		ingest.WithSchema(l.aiConfig.EmbeddingModel, l.aiConfig.Dimensions),
	}
	if l.checkpoints != nil {
		defaults = append(defaults, ingest.WithCheckpointStore(l.checkpoints))
	}
	return ingest.NewPipeline(l.index, l.embedder, append(defaults, opts...)...)
}

// NewSearcher builds a searcher bound to this library's index and
// embedder.
func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	defaults := []search.Option{
		search.WithEmbeddingModel(l.aiConfig.EmbeddingModel),
	}
	return search.NewSearcher(l.index, l.embedder, append(defaults, opts...)...)
}
