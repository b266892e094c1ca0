// Package rewrite applies byte-range edits to source text, leaving every
// byte outside the edited ranges untouched.
package rewrite

import (
	"sort"
	"strings"
)

// Edit replaces source[Start:End] with Text.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// verbatim starts a line that lies inside a multi-line string, template
// literal or comment. Dedent and Indent leave such lines alone and Unmark
// removes the marks from the final text. U+FDD0 is a noncharacter, so it
// never occurs in source text.
const verbatim = "\uFDD0"

// Verbatim returns zero-width edits marking every line that starts inside
// source[start:end] as verbatim. Apply them with Slice before Dedent.
func Verbatim(source []byte, start, end uint32) []Edit {
	var edits []Edit
	for off := start; off+1 < end && int(off) < len(source); off++ {
		if source[off] == '\n' {
			edits = append(edits, Edit{Start: off + 1, End: off + 1, Text: verbatim})
		}
	}
	return edits
}

// Unmark removes the marks placed by Verbatim.
func Unmark(text string) string {
	return strings.ReplaceAll(text, verbatim, "")
}

// Apply returns source with edits applied. Edits contained in an earlier,
// wider edit are dropped: the outer replacement already accounts for them.
func Apply(source []byte, edits []Edit) []byte {
	return []byte(Slice(source, 0, uint32(len(source)), edits))
}

// Slice returns source[start:end] with the edits that fall inside the range
// applied.
func Slice(source []byte, start, end uint32, edits []Edit) string {
	var inside []Edit
	for _, e := range edits {
		if e.Start >= start && e.End <= end {
			inside = append(inside, e)
		}
	}
	sort.SliceStable(inside, func(i, j int) bool {
		if inside[i].Start != inside[j].Start {
			return inside[i].Start < inside[j].Start
		}
		// Insertions go before a replacement starting at the same byte.
		if ei, ej := inside[i].End == inside[i].Start, inside[j].End == inside[j].Start; ei != ej {
			return ei
		}
		return inside[i].End > inside[j].End
	})

	var b strings.Builder
	b.Grow(int(end - start))
	pos := start
	for _, e := range inside {
		if e.Start < pos {
			continue
		}
		b.Write(source[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.Write(source[pos:end])
	return b.String()
}

// LineStart returns the offset of the first byte of the line containing offset.
func LineStart(source []byte, offset uint32) uint32 {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}

// LineIndent returns the leading whitespace of the line containing offset.
func LineIndent(source []byte, offset uint32) string {
	start := LineStart(source, offset)
	end := start
	for int(end) < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}

// Dedent removes indent from the start of every line after the first.
// Lines indented less than indent lose only their leading whitespace.
// Verbatim lines are kept.
func Dedent(text, indent string) string {
	if indent == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, verbatim) {
			continue
		}
		if strings.HasPrefix(line, indent) {
			lines[i] = line[len(indent):]
			continue
		}
		lines[i] = strings.TrimLeft(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// Indent prefixes every non-blank line after the first with indent.
// Verbatim lines are kept.
func Indent(text, indent string) string {
	if indent == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], verbatim) {
			continue
		}
		if strings.TrimSpace(lines[i]) != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
