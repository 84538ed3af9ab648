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


package index

import "errors"

var (
	// ErrNotInitialized indicates a query against a collection that was
	// never created. Callers use this to distinguish "no matches" from
	// "nothing was ever ingested". Never retried.
	ErrNotInitialized = errors.New("collection not initialized")

	// ErrSchemaMismatch indicates the collection's dimensionality, metric,
	// or recorded embedding model does not match the expected
	// configuration. Fatal; requires operator intervention (explicit
	// collection re-creation).
	ErrSchemaMismatch = errors.New("collection schema mismatch")

	// ErrUnavailable indicates the index service is unreachable.
	// Transient; safe to retry with backoff.
	ErrUnavailable = errors.New("index unavailable")

	// ErrCollectionExists indicates an attempt to create a collection
	// that already exists.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrEmptyVector indicates a query with an empty vector.
	ErrEmptyVector = errors.New("empty query vector")
)
