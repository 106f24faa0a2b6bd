// Copyright © 2024 The GHLS authors

package document

import "unicode/utf8"

// Position is a 0-based line and character offset. Character is measured
// in UTF-16 code units, matching the LSP default position encoding.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUTF16Len(r)
	}
	return n
}

// ByteOffset converts a UTF-16 character offset within s to a byte offset.
// The boolean is false when the offset lies past the end of s. An offset
// that splits a surrogate pair resolves to the start of that rune.
func ByteOffset(s string, character int) (int, bool) {
	if character <= 0 {
		return 0, character == 0
	}
	units := 0
	for i, r := range s {
		if units >= character {
			return i, true
		}
		units += runeUTF16Len(r)
		if units > character {
			return i, true
		}
	}
	if units == character {
		return len(s), true
	}
	return len(s), false
}

// CharacterOffset converts a byte offset within s to a UTF-16 offset.
func CharacterOffset(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff > len(s) {
		byteOff = len(s)
	}
	return UTF16Len(s[:byteOff])
}

// ClampCharacter limits character to the UTF-16 length of line.
func ClampCharacter(line string, character int) int {
	if character < 0 {
		return 0
	}
	if n := UTF16Len(line); character > n {
		return n
	}
	return character
}

func runeUTF16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2 // surrogate pair
	}
	return 1
}

// lineIndex holds the cumulative byte offset at which each line starts,
// counting the one-byte "\n" terminator of every preceding line.
type lineIndex []int

func buildLineIndex(lines []string) lineIndex {
	idx := make(lineIndex, len(lines))
	off := 0
	for i, l := range lines {
		idx[i] = off
		off += len(l) + 1
	}
	return idx
}

// offset translates a position into an absolute byte offset within the
// joined content of lines.
func (idx lineIndex) offset(lines []string, pos Position) (int, error) {
	if pos.Line == len(lines) && pos.Character == 0 && len(lines) > 0 {
		// One past the last line addresses the end of the content.
		last := len(lines) - 1
		return idx[last] + len(lines[last]), nil
	}
	if pos.Line < 0 || pos.Line >= len(lines) {
		return 0, outOfRange(pos, "line")
	}
	col, ok := ByteOffset(lines[pos.Line], pos.Character)
	if !ok || pos.Character < 0 {
		return 0, outOfRange(pos, "character")
	}
	return idx[pos.Line] + col, nil
}
