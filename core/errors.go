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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSongRecord indicates a SongRecord failed validation.
	ErrInvalidSongRecord = errors.New("invalid song record")

	// ErrMissingIdentity indicates a record has neither artist nor song
	// title, so no stable ID can be derived for it.
	ErrMissingIdentity = errors.New("record has neither artist nor song title")
)
