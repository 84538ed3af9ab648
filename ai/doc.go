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


// Package ai provides the embedding abstraction used by vibesearch.
//
// It defines the Embedder interface and its configuration. Ingestion and
// search depend on this abstraction rather than a concrete client, which
// keeps both testable and allows the embedding backend to be swapped.
//
// # Implementation Packages
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test double without external dependencies
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE
// to enforce abstraction. The mock constructor returns the CONCRETE
// *mock.MockEmbedder so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := embedder.EmbedText(ctx, "melancholic rainy day songs")
package ai
