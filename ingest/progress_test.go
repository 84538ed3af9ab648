package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	tracker.Update(5)
	assert.Empty(t, buf.String(), "below the interval nothing is reported")

	tracker.Update(10)
	assert.Contains(t, buf.String(), "10/100")
	assert.Contains(t, buf.String(), "10.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 50, 10)
	tracker.Start()
	tracker.Update(20)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "50/50")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"), "finish prints a trailing newline")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 30, 1)
	tracker.Start()
	tracker.Update(45)

	assert.Contains(t, buf.String(), "30/30")
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 30, 1)
	tracker.Update(10)
	tracker.Finish()

	assert.Empty(t, buf.String())
}
