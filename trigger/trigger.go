// Copyright © 2024 The GHLS authors

// Package trigger derives the completion context from the word in front of
// the cursor: the sigil that selects an entity kind, the needle typed after
// it and the range a completion replaces.
package trigger

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/ghls/document"
	"github.com/luthersystems/ghls/entity"
)

// Kind identifies what a sigil completes.
type Kind int

const (
	KindNone Kind = iota
	KindIssue
	KindMember
	KindWikiPage
	KindRepository
	KindUserSearch
)

// Characters lists every sigil, in the order advertised to clients.
var Characters = []string{"#", "@", "[", "/", ":"}

var sigils = map[string]Kind{
	"#": KindIssue,
	"@": KindMember,
	"[": KindWikiPage,
	"/": KindRepository,
	":": KindUserSearch,
}

func (k Kind) String() string {
	switch k {
	case KindIssue:
		return "issue"
	case KindMember:
		return "member"
	case KindWikiPage:
		return "wiki"
	case KindRepository:
		return "repository"
	case KindUserSearch:
		return "user search"
	}
	return "none"
}

// Sigil returns the character that selects k, or "" for KindNone.
func (k Kind) Sigil() string {
	for _, c := range Characters {
		if sigils[c] == k {
			return c
		}
	}
	return ""
}

// ParseKind maps a kind name to a Kind. Entity kind names are accepted as
// well as "user" for the remote user search.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "user", "users", "search":
		return KindUserSearch, true
	}
	ek, ok := entity.ParseKind(s)
	if !ok {
		return KindNone, false
	}
	for _, k := range []Kind{KindIssue, KindMember, KindWikiPage, KindRepository} {
		if e, _ := k.Entity(); e == ek {
			return k, true
		}
	}
	return KindNone, false
}

// Entity returns the cached entity kind completed by k. User search is
// served remotely and has none.
func (k Kind) Entity() (entity.Kind, bool) {
	switch k {
	case KindIssue:
		return entity.KindIssue, true
	case KindMember:
		return entity.KindMember, true
	case KindWikiPage:
		return entity.KindWikiPage, true
	case KindRepository:
		return entity.KindRepository, true
	}
	return 0, false
}

// Context describes the word in front of the cursor.
type Context struct {
	Kind   Kind
	Sigil  string
	Needle string
	// Range is the span a completion replaces: the sigil and the needle.
	Range document.Range
}

// Parse computes the context for a cursor at UTF-16 offset character of
// line. A character past the end of line is clamped to it. The range
// returned lies on line 0.
func Parse(line string, character int) Context {
	col := document.ClampCharacter(line, character)
	end, _ := document.ByteOffset(line, col)
	prefix := line[:end]

	start := len(prefix)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:start])
		if unicode.IsSpace(r) {
			break
		}
		start -= size
	}
	word := prefix[start:]

	var c Context
	if utf8.RuneCountInString(word) <= 1 {
		c.Sigil = word
	} else {
		_, size := utf8.DecodeRuneInString(word)
		c.Sigil, c.Needle = word[:size], word[size:]
	}
	c.Kind = sigils[c.Sigil]

	from := col - (document.UTF16Len(c.Needle) + 1)
	if from < 0 {
		from = 0
	}
	c.Range = document.Range{
		Start: document.Position{Character: from},
		End:   document.Position{Character: col},
	}
	return c
}

// FromStore parses the cursor line of the document uri.
func FromStore(store *document.Store, uri string, pos document.Position) (Context, error) {
	line, err := store.Line(uri, pos.Line)
	if err != nil {
		return Context{}, err
	}
	c := Parse(line, pos.Character)
	c.Range.Start.Line = pos.Line
	c.Range.End.Line = pos.Line
	return c, nil
}
