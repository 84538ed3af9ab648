package ingest

import (
	"io"

	"github.com/poiesic/vibesearch/core"
)

// SongSource yields song records in corpus order. Next returns io.EOF
// after the last record. Sources are not safe for concurrent use; the
// pipeline drains a source from a single goroutine.
type SongSource interface {
	Next() (*core.SongRecord, error)
}

// SliceSource serves records from an in-memory slice.
type SliceSource struct {
	records []*core.SongRecord
	pos     int
}

var _ SongSource = (*SliceSource)(nil)

// NewSliceSource creates a source over the given records.
func NewSliceSource(records []*core.SongRecord) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (*core.SongRecord, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	record := s.records[s.pos]
	s.pos++
	return record, nil
}
