// Copyright © 2024 The GHLS authors

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 3, UTF16Len("née"))
	assert.Equal(t, 4, UTF16Len("a😀b"))
}

func TestByteOffset(t *testing.T) {
	tests := []struct {
		s         string
		character int
		want      int
		ok        bool
	}{
		{"hello", 0, 0, true},
		{"hello", 5, 5, true},
		{"hello", 6, 5, false},
		{"hello", -1, 0, false},
		{"née", 2, 3, true},
		{"a😀b", 1, 1, true},
		{"a😀b", 2, 1, true}, // inside the surrogate pair
		{"a😀b", 3, 5, true},
		{"a😀b", 4, 6, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		got, ok := ByteOffset(tt.s, tt.character)
		assert.Equal(t, tt.ok, ok, "%q@%d", tt.s, tt.character)
		assert.Equal(t, tt.want, got, "%q@%d", tt.s, tt.character)
	}
}

func TestCharacterOffset(t *testing.T) {
	assert.Equal(t, 0, CharacterOffset("née", 0))
	assert.Equal(t, 2, CharacterOffset("née", 3))
	assert.Equal(t, 3, CharacterOffset("a😀b", 5))
	assert.Equal(t, 4, CharacterOffset("a😀b", 99))
}

func TestClampCharacter(t *testing.T) {
	assert.Equal(t, 0, ClampCharacter("abc", -3))
	assert.Equal(t, 2, ClampCharacter("abc", 2))
	assert.Equal(t, 3, ClampCharacter("abc", 40))
	assert.Equal(t, 4, ClampCharacter("a😀b", 40))
}
