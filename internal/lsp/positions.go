package lsp

import "unicode/utf16"

// OffsetIndex converts UTF-8 byte offsets into LSP positions (UTF-16
// line/character pairs). The original Rust implementation leans on the
// string_offsets crate for this; no equivalent indexed conversion library
// appears anywhere in the example corpus, so this is a small hand-written
// line-table index built once per document revision and reused for every
// diagnostic in that revision — justified stdlib exception (see DESIGN.md).
type OffsetIndex struct {
	text       string
	lineStarts []int // byte offset of the start of each line
}

// NewOffsetIndex builds a line-start table for text.
func NewOffsetIndex(text string) *OffsetIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &OffsetIndex{text: text, lineStarts: starts}
}

// Position converts a UTF-8 byte offset to a zero-based LSP Position,
// counting UTF-16 code units within the line as the LSP spec requires.
func (idx *OffsetIndex) Position(byteOffset int) Position {
	line := idx.lineForOffset(byteOffset)
	lineStart := idx.lineStarts[line]
	if byteOffset > len(idx.text) {
		byteOffset = len(idx.text)
	}
	units := utf16.Encode([]rune(idx.text[lineStart:byteOffset]))
	return Position{Line: line, Character: len(units)}
}

// Range converts a half-open [start, end) byte range to an LSP Range.
func (idx *OffsetIndex) Range(start, end int) Range {
	return Range{Start: idx.Position(start), End: idx.Position(end)}
}

func (idx *OffsetIndex) lineForOffset(offset int) int {
	lo, hi := 0, len(idx.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// ByteOffset converts an LSP Position back to a UTF-8 byte offset, used
// when translating a client-supplied Range (e.g. incremental didChange, or
// a codeAction's cursor range) into the byte offsets the pipeline expects.
func (idx *OffsetIndex) ByteOffset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(idx.lineStarts) {
		return len(idx.text)
	}
	lineStart := idx.lineStarts[pos.Line]
	lineEnd := len(idx.text)
	if pos.Line+1 < len(idx.lineStarts) {
		lineEnd = idx.lineStarts[pos.Line+1] - 1
		if lineEnd < lineStart {
			lineEnd = lineStart
		}
	}
	line := idx.text[lineStart:lineEnd]

	units := 0
	for byteIdx, r := range line {
		if units >= pos.Character {
			return lineStart + byteIdx
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return lineStart + len(line)
}
