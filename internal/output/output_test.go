package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Debug("hidden")
	logger.Warn("skipped", "file", "a.js")
	out := buf.String()
	assert.NotContains(t, out, "hidden", "debug output needs verbose")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "file=a.js")

	buf.Reset()
	logger = NewLogger(&buf, true)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	got := FormatSummary(Summary{Files: 4, Changed: 2, Migrated: 3, Skipped: 1, Renamed: 5})
	for _, want := range []string{"2 of 4 files changed", "3 migrated", "1 skipped", "5 renamed"} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "failed")

	got = FormatSummary(Summary{Files: 1, Dry: true, Failed: 1})
	assert.Contains(t, got, "0 of 1 files would change")
	assert.Contains(t, got, "1 failed")
}

func TestRenderDiff(t *testing.T) {
	t.Parallel()

	var before, after strings.Builder
	for i := 0; i < 10; i++ {
		line := "line " + string(rune('a'+i)) + "\n"
		before.WriteString(line)
		if i == 5 {
			after.WriteString("changed\n")
			continue
		}
		after.WriteString(line)
	}

	got := RenderDiff("a.js", before.String(), after.String())
	assert.Contains(t, got, "--- a.js")
	assert.Contains(t, got, "+++ a.js")
	assert.Contains(t, got, "-line f")
	assert.Contains(t, got, "+changed")
	// Three lines of context on each side; the rest is elided.
	assert.Contains(t, got, " line c\n")
	assert.Contains(t, got, " line i\n")
	assert.NotContains(t, got, " line b\n")
	assert.NotContains(t, got, " line j\n")
	assert.Contains(t, got, "@@")
}
