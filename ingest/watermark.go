package ingest

import "sync"

// watermark tracks the contiguous prefix of committed batches. Batches
// complete out of order under the worker pool, but only a contiguous
// prefix may be recorded in the checkpoint, otherwise a resumed run
// would skip records that were never written.
type watermark struct {
	mu        sync.Mutex
	base      uint64 // records committed before this run (resume offset)
	sizes     []int  // record count per batch, in corpus order
	done      []bool
	next      int    // first batch not yet part of the contiguous prefix
	committed uint64
}

func newWatermark(base uint64, sizes []int) *watermark {
	return &watermark{
		base:      base,
		sizes:     sizes,
		done:      make([]bool, len(sizes)),
		committed: base,
	}
}

// commit marks a batch complete and returns the record count of the
// contiguous committed prefix plus whether that count advanced.
func (w *watermark) commit(batch int) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.done[batch] = true
	advanced := false
	for w.next < len(w.sizes) && w.done[w.next] {
		w.committed += uint64(w.sizes[w.next])
		w.next++
		advanced = true
	}
	return w.committed, advanced
}
