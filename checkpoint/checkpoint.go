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


package checkpoint

import "time"

// Checkpoint records the progress of an ingestion run into a collection.
// Committed is the count of records at the start of the corpus that are
// known to be durably upserted, so a resumed run skips exactly that many.
// Only bookkeeping lives here; song data is owned by the vector index.
type Checkpoint struct {
	Collection     string
	EmbeddingModel string
	Committed      uint64
	UpdatedAt      time.Time
}
