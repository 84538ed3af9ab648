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


// Package playlist defines the boundary for materializing search results
// as a shareable playlist on a streaming service.
package playlist

import (
	"context"
	"errors"

	"github.com/poiesic/vibesearch/core"
)

var (
	// ErrTitleRequired is returned when the playlist title is empty.
	ErrTitleRequired = errors.New("playlist title required")

	// ErrNoSongs is returned when there are no songs to add.
	ErrNoSongs = errors.New("no songs to add")
)

// Creator materializes a list of songs as a playlist and returns its
// shareable URL. Creation is best effort: songs that cannot be resolved
// on the provider are skipped, while provider errors on the playlist
// itself surface verbatim.
type Creator interface {
	CreatePlaylist(ctx context.Context, title string, songs []core.SongRef) (string, error)
}
