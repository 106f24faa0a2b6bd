// Copyright © 2024 The GHLS authors

package hover

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/luthersystems/ghls/document"
)

// LinkKind classifies the target of a markdown link.
type LinkKind int

const (
	LinkIssue LinkKind = iota + 1
	LinkWiki
	LinkRepository
	LinkUser
)

func (k LinkKind) String() string {
	switch k {
	case LinkIssue:
		return "issue"
	case LinkWiki:
		return "wiki"
	case LinkRepository:
		return "repository"
	case LinkUser:
		return "user"
	}
	return "unknown"
}

// Link is a classified link target.
type Link struct {
	Kind LinkKind
	// Target is the raw text between the parentheses.
	Target string
	// ID is the final path segment: the issue number, wiki page or login.
	ID string
	// Owner and Name are set for repository links.
	Owner string
	Name  string
}

// Extract finds the target of the markdown link at the cursor, which is a
// UTF-16 offset into line. The cursor may be on the target itself or on
// the [label] in front of it. Surrounding whitespace is ignored.
func Extract(line string, character int) (string, bool) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	character -= document.CharacterOffset(line, len(line)-len(trimmed))
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
	if trimmed == "" {
		return "", false
	}
	cur, _ := document.ByteOffset(trimmed, document.ClampCharacter(trimmed, character))
	if cur >= len(trimmed) {
		cur = len(trimmed) - 1
	}

	start := -1
	for i := cur; i >= 0; i-- {
		if trimmed[i] == '(' {
			start = i + 1
			break
		}
	}
	end := -1
	for i := cur; i < len(trimmed); i++ {
		if start < 0 && trimmed[i] == '(' {
			start = i + 1
		}
		if trimmed[i] == ')' {
			end = i
			break
		}
	}
	if start < 0 || end < 0 || start >= end {
		log.Debugf("no link at %d (start %d, end %d): %q", character, start, end, trimmed)
		return "", false
	}
	return trimmed[start:end], true
}

// Classify decides what a link target points at. Links are classified by
// their path alone; query and fragment are ignored. Issue and pull request links carry an
// "issues" or "pull" segment, wiki links a "wiki" segment; any other path
// of two or more segments names a repository and a single segment a user.
func Classify(target string) Link {
	l := Link{Target: target}
	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 {
		l.ID = segments[len(segments)-1]
	}
	switch {
	case hasSegment(segments, "issues", "pull"):
		l.Kind = LinkIssue
	case hasSegment(segments, "wiki"):
		l.Kind = LinkWiki
		if l.ID == "wiki" {
			l.ID = "Home"
		}
	case len(segments) >= 2:
		l.Kind = LinkRepository
		l.Owner, l.Name = segments[len(segments)-2], segments[len(segments)-1]
	default:
		l.Kind = LinkUser
	}
	return l
}

func hasSegment(segments []string, names ...string) bool {
	for _, s := range segments {
		for _, n := range names {
			if s == n {
				return true
			}
		}
	}
	return false
}
