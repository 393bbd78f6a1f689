// Package patch parses unified diffs and applies them to a single target file.
//
// A patch file may hold several diff items (as produced by "diff -uNr"); all of
// their hunks are applied, in file order, to the one target named by the
// caller. Matching is exact: every context and removed line of a hunk must be
// found at the hunk's recorded offset, shifted by the line-count change of the
// hunks applied before it. The target is replaced with a rename only once the
// whole set applied cleanly.
package patch

// LineKind is the role of a line inside a hunk.
type LineKind byte

const (
	Context LineKind = ' '
	Removed LineKind = '-'
	Added   LineKind = '+'
)

// Line is one hunk line without its prefix and line terminator.
type Line struct {
	Kind LineKind
	Text string
	// NoNewline is set when the diff marks this line as the last one in its
	// file with no trailing newline.
	NoNewline bool
}

// Hunk is a contiguous changed region. Start positions are 1-based as in the
// "@@ -start,len +start,len @@" header; a zero length means the hunk inserts
// after (or deletes up to) line Start.
type Hunk struct {
	SrcStart int
	SrcLen   int
	DstStart int
	DstLen   int
	Lines    []Line
}

// Item is a single file section of a patch.
type Item struct {
	Source string
	Target string
	Hunks  []Hunk
}

// Set is the parsed content of a patch file.
type Set struct {
	Items []Item
}

// Hunks returns every hunk of every item, preserving file order.
func (s *Set) Hunks() []Hunk {
	var hunks []Hunk
	for _, item := range s.Items {
		hunks = append(hunks, item.Hunks...)
	}
	return hunks
}

// Returns the lines the hunk expects to find in the target.
func (h Hunk) before() []Line {
	lines := make([]Line, 0, h.SrcLen)
	for _, l := range h.Lines {
		if l.Kind != Added {
			lines = append(lines, l)
		}
	}
	return lines
}
