// Copyright © 2024 The GHLS authors

// Package document holds the text of open documents and applies full and
// incremental edits to it.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownDocument is returned for operations on a URI that was never
	// opened or has been closed.
	ErrUnknownDocument = errors.New("unknown document")
	// ErrOutOfRange is returned when an edit addresses a position outside
	// the buffer.
	ErrOutOfRange = errors.New("range out of bounds")
	// ErrLineNotFound is returned by Line for a line number past the end of
	// the buffer.
	ErrLineNotFound = errors.New("line not found")
)

func outOfRange(pos Position, what string) error {
	return fmt.Errorf("%w: %s at %d:%d", ErrOutOfRange, what, pos.Line, pos.Character)
}

// Edit is a single content change. A nil Range replaces the whole content.
type Edit struct {
	Range *Range
	Text  string
}

// Buffer is the in-memory text of one open document.
type Buffer struct {
	mu      sync.RWMutex
	URI     string
	version int32
	lines   []string
}

func newBuffer(uri string, version int32, text string) *Buffer {
	return &Buffer{URI: uri, version: version, lines: splitLines(text)}
}

// Version returns the version of the last applied change.
func (b *Buffer) Version() int32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Text returns the full content of the buffer.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// LineCount returns the number of lines in the buffer. A buffer always has
// at least one (possibly empty) line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns line n without its terminator.
func (b *Buffer) Line(n int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n < 0 || n >= len(b.lines) {
		return "", fmt.Errorf("%w: %d of %d", ErrLineNotFound, n, len(b.lines))
	}
	return strings.TrimSuffix(b.lines[n], "\r"), nil
}

// apply applies edits in order. Either all edits are applied or, on the
// first failure, the buffer is left untouched.
func (b *Buffer) apply(version int32, edits []Edit) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.lines
	for i, e := range edits {
		next, err := applyEdit(lines, e)
		if err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
		lines = next
	}
	b.lines = lines
	b.version = version
	return nil
}

// applyEdit returns the lines that result from applying e to lines. The
// input slice is never modified.
func applyEdit(lines []string, e Edit) ([]string, error) {
	if e.Range == nil {
		return splitLines(e.Text), nil
	}
	idx := buildLineIndex(lines)
	start, err := idx.offset(lines, e.Range.Start)
	if err != nil {
		return nil, err
	}
	end, err := idx.offset(lines, e.Range.End)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %d:%d after end %d:%d", ErrOutOfRange,
			e.Range.Start.Line, e.Range.Start.Character, e.Range.End.Line, e.Range.End.Character)
	}
	content := strings.Join(lines, "\n")
	return splitLines(content[:start] + e.Text + content[end:]), nil
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Store manages open documents. Each buffer carries its own lock so that
// operations on distinct documents never contend.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Buffer
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Buffer)}
}

// Open creates or overwrites the buffer for uri.
func (s *Store) Open(uri string, version int32, text string) *Buffer {
	buf := newBuffer(uri, version, text)
	s.mu.Lock()
	s.docs[uri] = buf
	s.mu.Unlock()
	return buf
}

// Apply applies edits to the buffer for uri in arrival order.
func (s *Store) Apply(uri string, version int32, edits ...Edit) error {
	buf := s.Get(uri)
	if buf == nil {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return buf.apply(version, edits)
}

// Line returns line n of the buffer for uri.
func (s *Store) Line(uri string, n int) (string, error) {
	buf := s.Get(uri)
	if buf == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return buf.Line(n)
}

// Text returns the full content of the buffer for uri.
func (s *Store) Text(uri string) (string, error) {
	buf := s.Get(uri)
	if buf == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return buf.Text(), nil
}

// Version returns the version of the buffer for uri.
func (s *Store) Version(uri string) (int32, error) {
	buf := s.Get(uri)
	if buf == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return buf.Version(), nil
}

// Close removes a document from the store.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a buffer by URI. Returns nil if not found.
func (s *Store) Get(uri string) *Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// URIs returns the URIs of all open documents in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.RUnlock()
	sort.Strings(uris)
	return uris
}
