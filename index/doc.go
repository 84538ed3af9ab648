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


// Package index provides the vector index abstraction for vibesearch.
//
// The Index interface decouples ingestion and search from the concrete
// vector database. The index exclusively owns durable entry storage;
// ingestion and search are stateless transforms over it.
//
// # Constructor Return Type Pattern
//
// Public constructors return the Index interface to enforce abstraction
// and enable multiple backends:
//
//	idx, err := qdrant.New(qdrant.DefaultConfig())  // returns index.Index
//	idx := memory.New()                             // in-process, for tests
//
// # Implementation Packages
//
//   - index/qdrant: production backend over the Qdrant gRPC client
//   - index/memory: in-process backend for tests and offline use
//
// # Thread Safety
//
// All implementations must be thread-safe. Concurrent queries share only
// read access; upserts are atomic per entry.
package index
