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


package core

import (
	"fmt"
	"strings"
)

// ValidateSongRecord validates a SongRecord according to domain rules.
//
// Validation rules:
//   - At least one of Artist and Song must be non-blank (identity)
//
// NOT validated:
//   - Link (may be empty; display only)
//   - Lyrics (may be empty; canonicalization treats absent lyrics as "")
func ValidateSongRecord(record *SongRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSongRecord)
	}

	if strings.TrimSpace(record.Artist) == "" && strings.TrimSpace(record.Song) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSongRecord, ErrMissingIdentity)
	}

	return nil
}

// NormalizeSongRecord trims surrounding whitespace from the identity fields
// so that ID derivation is stable across corpora with inconsistent spacing.
// Lyrics are left untouched; they feed canonicalization verbatim.
func NormalizeSongRecord(record *SongRecord) {
	record.Artist = strings.TrimSpace(record.Artist)
	record.Song = strings.TrimSpace(record.Song)
	record.Link = strings.TrimSpace(record.Link)
}
