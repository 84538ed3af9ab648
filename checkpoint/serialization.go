package checkpoint

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MarshalCheckpoint serializes a Checkpoint to bytes. The layout is a
// plain field-by-field MUS encoding; UpdatedAt travels as UnixMicro.
func MarshalCheckpoint(checkpoint *Checkpoint) []byte {
	micros := checkpoint.UpdatedAt.UnixMicro()
	size := ord.String.Size(checkpoint.Collection) +
		ord.String.Size(checkpoint.EmbeddingModel) +
		varint.Uint64.Size(checkpoint.Committed) +
		varint.Int64.Size(micros)

	buf := make([]byte, size)
	n := ord.String.Marshal(checkpoint.Collection, buf)
	n += ord.String.Marshal(checkpoint.EmbeddingModel, buf[n:])
	n += varint.Uint64.Marshal(checkpoint.Committed, buf[n:])
	varint.Int64.Marshal(micros, buf[n:])
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	var checkpoint Checkpoint

	collection, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal collection: %w", err)
	}
	checkpoint.Collection = collection

	model, n2, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("unmarshal embedding model: %w", err)
	}
	checkpoint.EmbeddingModel = model
	n += n2

	committed, n3, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("unmarshal committed count: %w", err)
	}
	checkpoint.Committed = committed
	n += n3

	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("unmarshal updated at: %w", err)
	}
	checkpoint.UpdatedAt = time.UnixMicro(micros).UTC()

	return &checkpoint, nil
}
