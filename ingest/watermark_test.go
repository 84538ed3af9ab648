package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatermark_InOrderCommits(t *testing.T) {
	mark := newWatermark(0, []int{100, 100, 50})

	committed, advanced := mark.commit(0)
	assert.True(t, advanced)
	assert.Equal(t, uint64(100), committed)

	committed, advanced = mark.commit(1)
	assert.True(t, advanced)
	assert.Equal(t, uint64(200), committed)

	committed, advanced = mark.commit(2)
	assert.True(t, advanced)
	assert.Equal(t, uint64(250), committed)
}

func TestWatermark_OutOfOrderCommits(t *testing.T) {
	mark := newWatermark(0, []int{100, 100, 100})

	// Batch 2 finishing first must not advance the prefix.
	committed, advanced := mark.commit(2)
	assert.False(t, advanced)
	assert.Equal(t, uint64(0), committed)

	committed, advanced = mark.commit(0)
	assert.True(t, advanced)
	assert.Equal(t, uint64(100), committed)

	// Batch 1 closes the gap, pulling batch 2 into the prefix.
	committed, advanced = mark.commit(1)
	assert.True(t, advanced)
	assert.Equal(t, uint64(300), committed)
}

func TestWatermark_ResumeBase(t *testing.T) {
	mark := newWatermark(500, []int{100})

	committed, advanced := mark.commit(0)
	assert.True(t, advanced)
	assert.Equal(t, uint64(600), committed)
}
