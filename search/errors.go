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


package search

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery is returned for empty or whitespace-only queries.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmptyArtist is returned for empty or whitespace-only artist names.
	ErrEmptyArtist = errors.New("artist is empty")

	// ErrInvalidLimit is returned when the requested result limit is not positive.
	ErrInvalidLimit = errors.New("limit must be greater than 0")
)
