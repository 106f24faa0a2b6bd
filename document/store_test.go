// Copyright © 2024 The GHLS authors

package document

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURI = "file:///notes/todo.md"

func rng(sl, sc, el, ec int) *Range {
	return &Range{Start: Position{Line: sl, Character: sc}, End: Position{Line: el, Character: ec}}
}

func TestStoreOpenAndLine(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 1, "# Title\r\nsee #42\n")

	line, err := s.Line(testURI, 0)
	require.NoError(t, err)
	assert.Equal(t, "# Title", line, "CR should be stripped")

	line, err = s.Line(testURI, 1)
	require.NoError(t, err)
	assert.Equal(t, "see #42", line)

	line, err = s.Line(testURI, 2)
	require.NoError(t, err)
	assert.Equal(t, "", line, "trailing newline yields an empty last line")

	_, err = s.Line(testURI, 3)
	assert.ErrorIs(t, err, ErrLineNotFound)

	_, err = s.Line("file:///missing.md", 0)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestStoreOpenOverwrites(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 1, "first")
	s.Open(testURI, 7, "second")
	text, err := s.Text(testURI)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Equal(t, int32(7), s.Get(testURI).Version())
}

func TestApplyFullReplace(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 1, "old line one\nold line two")
	require.NoError(t, s.Apply(testURI, 2, Edit{Text: "brand new"}))

	text, err := s.Text(testURI)
	require.NoError(t, err)
	assert.Equal(t, "brand new", text)
	assert.Equal(t, 1, s.Get(testURI).LineCount())
	assert.Equal(t, int32(2), s.Get(testURI).Version())
}

func TestApplyIncremental(t *testing.T) {
	tests := []struct {
		name    string
		content string
		edit    Edit
		want    string
	}{
		{"insert", "hello world", Edit{Range: rng(0, 5, 0, 5), Text: ","}, "hello, world"},
		{"delete", "hello, world", Edit{Range: rng(0, 5, 0, 6)}, "hello world"},
		{"replace across lines", "one\ntwo\nthree", Edit{Range: rng(0, 2, 2, 1), Text: "X"}, "onXhree"},
		{"insert newline", "ab", Edit{Range: rng(0, 1, 0, 1), Text: "\n"}, "a\nb"},
		{"append at end", "ab\n", Edit{Range: rng(1, 0, 1, 0), Text: "#1"}, "ab\n#1"},
		{"line past end addresses end", "ab", Edit{Range: rng(0, 2, 1, 0), Text: "c"}, "abc"},
		{"utf16 columns", "a😀b", Edit{Range: rng(0, 3, 0, 4), Text: "c"}, "a😀c"},
		{"non-ascii", "née #", Edit{Range: rng(0, 5, 0, 5), Text: "12"}, "née #12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Open(testURI, 1, tt.content)
			require.NoError(t, s.Apply(testURI, 2, tt.edit))
			text, err := s.Text(testURI)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestApplySequentialEqualsStepwise(t *testing.T) {
	edits := []Edit{
		{Range: rng(0, 0, 0, 0), Text: "# Notes\n"},
		{Range: rng(1, 7, 1, 7), Text: " #4"},
		{Range: rng(1, 10, 1, 10), Text: "2"},
		{Range: rng(0, 2, 0, 7), Text: "Todo"},
		{Range: rng(2, 0, 2, 4), Text: ""},
	}
	const initial = "fix the cron\nthen ship"

	batch := NewStore()
	batch.Open(testURI, 1, initial)
	require.NoError(t, batch.Apply(testURI, 2, edits...))

	step := NewStore()
	step.Open(testURI, 1, initial)
	for i, e := range edits {
		require.NoError(t, step.Apply(testURI, int32(i+2), e), "edit %d", i)
	}

	got, err := batch.Text(testURI)
	require.NoError(t, err)
	want, err := step.Text(testURI)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "# Todo\nfix the #42 cron\n ship", got)
}

func TestApplyErrors(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 1, "short\nlines")

	t.Run("unknown document", func(t *testing.T) {
		err := s.Apply("file:///nope.md", 2, Edit{Text: "x"})
		assert.ErrorIs(t, err, ErrUnknownDocument)
	})
	t.Run("line out of range", func(t *testing.T) {
		err := s.Apply(testURI, 2, Edit{Range: rng(5, 0, 5, 0), Text: "x"})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
	t.Run("character out of range", func(t *testing.T) {
		err := s.Apply(testURI, 2, Edit{Range: rng(0, 6, 0, 9), Text: "x"})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
	t.Run("negative", func(t *testing.T) {
		err := s.Apply(testURI, 2, Edit{Range: rng(0, -1, 0, 0), Text: "x"})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
	t.Run("inverted", func(t *testing.T) {
		err := s.Apply(testURI, 2, Edit{Range: rng(1, 2, 0, 1), Text: "x"})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
	t.Run("batch is atomic", func(t *testing.T) {
		err := s.Apply(testURI, 9,
			Edit{Range: rng(0, 0, 0, 0), Text: "applied?"},
			Edit{Range: rng(40, 0, 40, 0), Text: "boom"},
		)
		require.ErrorIs(t, err, ErrOutOfRange)
		text, err := s.Text(testURI)
		require.NoError(t, err)
		assert.Equal(t, "short\nlines", text)
		assert.Equal(t, int32(1), s.Get(testURI).Version())
	})
}

func TestStoreClose(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 1, "x")
	s.Open("file:///b.md", 1, "y")
	assert.Equal(t, []string{"file:///b.md", testURI}, s.URIs())
	require.NoError(t, s.Apply(testURI, 5, Edit{Text: "z"}))
	v, err := s.Version(testURI)
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)
	s.Close(testURI)
	assert.Nil(t, s.Get(testURI))
	_, err = s.Text(testURI)
	assert.ErrorIs(t, err, ErrUnknownDocument)
	_, err = s.Version(testURI)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

// Readers must only ever see whole edits: every line observed is one of the
// states produced by complete edits.
func TestConcurrentEditsAreAtomic(t *testing.T) {
	s := NewStore()
	s.Open(testURI, 0, "aaaa")
	other := "file:///other.md"
	s.Open(other, 0, "untouched")

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			ch := string(rune('a' + i%2))
			err := s.Apply(testURI, int32(i), Edit{Range: rng(0, 0, 0, 4), Text: strings.Repeat(ch, 4)})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			line, err := s.Line(testURI, 0)
			assert.NoError(t, err)
			assert.Contains(t, []string{"aaaa", "bbbb"}, line)
			otherLine, err := s.Line(other, 0)
			assert.NoError(t, err)
			assert.Equal(t, "untouched", otherLine)
		}
	}()
	wg.Wait()
	assert.Equal(t, int32(n), s.Get(testURI).Version())
}

func ExampleStore_Apply() {
	s := NewStore()
	s.Open("file:///readme.md", 1, "See issue")
	_ = s.Apply("file:///readme.md", 2, Edit{
		Range: &Range{Start: Position{Line: 0, Character: 9}, End: Position{Line: 0, Character: 9}},
		Text:  " #42",
	})
	text, _ := s.Text("file:///readme.md")
	fmt.Println(text)
	// Output: See issue #42
}
