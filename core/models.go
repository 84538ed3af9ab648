package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for an indexed song.
// It is generated by content-based hashing so re-ingestion is idempotent.
type ID uint64

// idSeparator keeps "a|bc" and "ab|c" style collisions apart when hashing
// the identity fields of a song.
const idSeparator = "\x1f"

// IDFromSong generates a deterministic ID from a song's identity fields
// using BLAKE2b hashing. The same (artist, song) pair always produces the
// same ID, so upserting a song twice overwrites rather than duplicates.
func IDFromSong(artist, song string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(artist))
	h.Write([]byte(idSeparator))
	h.Write([]byte(song))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SongRecord is a single row of the song corpus.
// Records are immutable once read from the corpus; Link and Lyrics may be
// empty.
type SongRecord struct {
	Artist string
	Song   string
	Link   string
	Lyrics string
}

// ID returns the stable identifier for this record.
func (r *SongRecord) ID() ID {
	return IDFromSong(r.Artist, r.Song)
}

// Payload is the non-vector metadata stored alongside each indexed song.
// It exists purely for result display and playlist export; it is never
// used in similarity computation.
type Payload struct {
	Artist      string
	Song        string
	Link        string
	TextPreview string
}

// Payload returns the display metadata stored alongside this record's
// vector.
func (r *SongRecord) Payload() Payload {
	return Payload{
		Artist:      r.Artist,
		Song:        r.Song,
		Link:        r.Link,
		TextPreview: r.Preview(),
	}
}

// IndexEntry is one (id, vector, payload) triple stored in the vector index.
type IndexEntry struct {
	Id      ID
	Vector  []float32
	Payload Payload
}

// SearchResult is a single hit returned from a similarity query.
// Results are constructed fresh per query and never persisted.
type SearchResult struct {
	Id      ID
	Score   float32
	Payload Payload
}

// SongRef identifies a song for playlist materialization.
type SongRef struct {
	Artist string
	Song   string
}

// Ref returns the playlist reference for this search result.
func (r *SearchResult) Ref() SongRef {
	return SongRef{Artist: r.Payload.Artist, Song: r.Payload.Song}
}
