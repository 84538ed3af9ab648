package core

const (
	// CanonicalLyricsLimit is the number of lyric characters included in
	// the embedded text. Longer lyrics add latency without improving
	// retrieval quality.
	CanonicalLyricsLimit = 500

	// PreviewLimit is the number of lyric characters carried in the
	// payload for result display.
	PreviewLimit = 200
)

// CanonicalText derives the deterministic text representation of a record
// that is fed to the embedding model. Identical records always produce
// byte-identical output; retrieval quality and reproducibility depend on
// this determinism, so the format must not change for the lifetime of an
// index.
func (r *SongRecord) CanonicalText() string {
	return "Artist: " + r.Artist + " Song: " + r.Song + " Lyrics: " + truncateRunes(r.Lyrics, CanonicalLyricsLimit)
}

// Preview returns the short human-readable lyrics excerpt stored in the
// payload.
func (r *SongRecord) Preview() string {
	return truncateRunes(r.Lyrics, PreviewLimit)
}

// truncateRunes returns the first limit characters of s. Truncation counts
// characters rather than bytes so multi-byte lyrics are never cut through
// the middle of a rune.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
