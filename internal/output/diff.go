package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

// RenderDiff renders a line diff between the contents of a file before and
// after a transform. Unchanged runs longer than the context are elided.
func RenderDiff(path, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	sb.WriteString(StyleRemoved.Render("--- "+path) + "\n")
	sb.WriteString(StyleAdded.Render("+++ "+path) + "\n")
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range text {
				sb.WriteString(StyleRemoved.Render("-"+line) + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range text {
				sb.WriteString(StyleAdded.Render("+"+line) + "\n")
			}
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, text, i == 0, i == len(diffs)-1)
		}
	}
	return sb.String()
}

func writeContext(sb *strings.Builder, lines []string, first, last bool) {
	head, tail := diffContext, diffContext
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(lines) <= head+tail {
		for _, line := range lines {
			sb.WriteString(" " + line + "\n")
		}
		return
	}
	for _, line := range lines[:head] {
		sb.WriteString(" " + line + "\n")
	}
	sb.WriteString(StyleDim.Render("@@") + "\n")
	for _, line := range lines[len(lines)-tail:] {
		sb.WriteString(" " + line + "\n")
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
