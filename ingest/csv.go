package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/vibesearch/core"
)

// Column names recognized in the corpus header. "text" matches the
// spotify_millsongdata layout; "lyrics" is accepted as an alias.
const (
	columnArtist = "artist"
	columnSong   = "song"
	columnLink   = "link"
	columnText   = "text"
	columnLyrics = "lyrics"
)

// CSVSource streams song records from a CSV corpus. The first row must
// be a header naming at least the artist and song columns; link and
// lyrics columns are optional.
type CSVSource struct {
	reader  *csv.Reader
	closer  io.Closer
	columns map[string]int
}

var _ SongSource = (*CSVSource)(nil)

// NewCSVSource reads the header from r and returns a source over the
// remaining rows.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns[columnArtist]; !ok {
		return nil, fmt.Errorf("csv header missing %q column", columnArtist)
	}
	if _, ok := columns[columnSong]; !ok {
		return nil, fmt.Errorf("csv header missing %q column", columnSong)
	}

	return &CSVSource{reader: reader, columns: columns}, nil
}

// OpenCSV opens a CSV corpus file. Close releases the file handle.
func OpenCSV(path string) (*CSVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	source, err := NewCSVSource(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	source.closer = file
	return source, nil
}

func (s *CSVSource) Next() (*core.SongRecord, error) {
	row, err := s.reader.Read()
	if err != nil {
		return nil, err
	}
	record := &core.SongRecord{
		Artist: s.field(row, columnArtist),
		Song:   s.field(row, columnSong),
		Link:   s.field(row, columnLink),
		Lyrics: s.field(row, columnText),
	}
	if record.Lyrics == "" {
		record.Lyrics = s.field(row, columnLyrics)
	}
	return record, nil
}

// Close closes the underlying file when the source was opened from one.
func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *CSVSource) field(row []string, column string) string {
	idx, ok := s.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
