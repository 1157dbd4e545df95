package token

import "strings"

// Position is a 1-based line/column pair, matching the convention the
// teacher's lexer and CLI error printer use throughout (§7: "1-based line
// and column").
type Position struct {
	Line   int
	Column int
}

// Source wraps the original document text and the precomputed offsets of
// each line start, so that byte offsets can be converted to line/column
// positions (and back) without rescanning the text on every call. It is
// the "source-text-reference" the data model attaches to every Range.
type Source struct {
	Text        string
	lineOffsets []int // byte offset of the first byte of each line
}

// NewSource indexes text's line starts once, up front.
func NewSource(text string) *Source {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &Source{Text: text, lineOffsets: offsets}
}

// Position converts a byte offset into a 1-based line/column. Column counts
// bytes from the start of the line, not runes — this is the LSP/CLI-facing
// conversion described in §3.
func (s *Source) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	lo, hi := 0, len(s.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo
	col := offset - s.lineOffsets[line]
	return Position{Line: line + 1, Column: col + 1}
}

// Offset is the inverse of Position: it returns the byte offset of a given
// 1-based line/column pair, clamped to the document bounds. Used by the LSP
// surface (§4.9) to translate incoming edit ranges into byte indices.
func (s *Source) Offset(pos Position) int {
	line := pos.Line - 1
	if line < 0 {
		return 0
	}
	if line >= len(s.lineOffsets) {
		return len(s.Text)
	}
	lineStart := s.lineOffsets[line]
	lineEnd := len(s.Text)
	if line+1 < len(s.lineOffsets) {
		lineEnd = s.lineOffsets[line+1]
	}
	offset := lineStart + (pos.Column - 1)
	if offset < lineStart {
		offset = lineStart
	}
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}

// Range is a half-open byte span [Start, End) into a Source, with the
// operations §3 requires: length, substring, extension to the trailing
// newline or preceding whitespace, containment, overlap, and join.
type Range struct {
	Start int
	End   int
	src   *Source
}

// NewRange builds a Range directly; src may be nil for ranges that never
// need text-dependent operations (tests that only check Start/End).
func NewRange(start, end int, src *Source) Range {
	return Range{Start: start, End: end, src: src}
}

// Len returns the byte length of the range.
func (r Range) Len() int { return r.End - r.Start }

// Text returns the substring the range spans.
func (r Range) Text() string {
	if r.src == nil || r.Start < 0 || r.End > len(r.src.Text) || r.Start > r.End {
		return ""
	}
	return r.src.Text[r.Start:r.End]
}

// ExtendToTrailingNewline grows the range's End to include everything up to
// (but not including) the next '\n', or to end-of-file. Used when a
// diagnostic's quick-fix needs to remove a whole remaining line.
func (r Range) ExtendToTrailingNewline() Range {
	if r.src == nil {
		return r
	}
	text := r.src.Text
	end := r.End
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return Range{Start: r.Start, End: end, src: r.src}
}

// ExtendToPrecedingWhitespace grows the range's Start backward over any run
// of space/tab immediately before it, so a fix-up can remove a dangling
// indent along with the token it's deleting.
func (r Range) ExtendToPrecedingWhitespace() Range {
	if r.src == nil {
		return r
	}
	text := r.src.Text
	start := r.Start
	for start > 0 && (text[start-1] == ' ' || text[start-1] == '\t') {
		start--
	}
	return Range{Start: start, End: r.End, src: r.src}
}

// Contains reports whether offset lies within [Start, End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsRange reports whether other is wholly contained in r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether r and other share any byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Join returns the smallest range covering both r and other (min start,
// max end), as used when a group's range grows to cover a newly parsed
// child.
func (r Range) Join(other Range) Range {
	start, end := r.Start, r.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	src := r.src
	if src == nil {
		src = other.src
	}
	return Range{Start: start, End: end, src: src}
}

// StartPosition converts the range's Start offset to a line/column.
func (r Range) StartPosition() Position {
	if r.src == nil {
		return Position{}
	}
	return r.src.Position(r.Start)
}

// EndPosition converts the range's End offset to a line/column.
func (r Range) EndPosition() Position {
	if r.src == nil {
		return Position{}
	}
	return r.src.Position(r.End)
}

// TrimmedText returns Text with leading/trailing whitespace removed, a
// convenience used by hover and completion snippets.
func (r Range) TrimmedText() string {
	return strings.TrimSpace(r.Text())
}
