// Copyright © 2024 The GHLS authors

package cache

import "github.com/luthersystems/ghls/entity"

// Set groups the four entity caches owned by a session.
type Set struct {
	Issues       *Cache[entity.Issue]
	Members      *Cache[entity.Member]
	Repositories *Cache[entity.Repository]
	WikiPages    *Cache[entity.WikiPage]
}

// NewSet creates four empty caches. Issues are keyed by title, members by
// login, repositories by "<owner>/<name>" and wiki pages by title.
func NewSet() *Set {
	return &Set{
		Issues: New(entity.KindIssue,
			func(i *entity.Issue) string { return i.Title },
			entity.FromIssue),
		Members: New(entity.KindMember,
			func(m *entity.Member) string { return m.Login },
			entity.FromMember),
		Repositories: New(entity.KindRepository,
			(*entity.Repository).FullName,
			entity.FromRepository),
		WikiPages: New(entity.KindWikiPage,
			func(w *entity.WikiPage) string { return w.Title },
			entity.FromWikiPage),
	}
}

// kinded is the kind-independent view of a Cache.
type kinded interface {
	Kind() entity.Kind
	Len() int
	Entities() []entity.Entity
}

func (s *Set) lookup(k entity.Kind) kinded {
	for _, c := range []kinded{s.Issues, s.Members, s.Repositories, s.WikiPages} {
		if c.Kind() == k {
			return c
		}
	}
	return nil
}

// Entities returns the cached records of kind k.
func (s *Set) Entities(k entity.Kind) []entity.Entity {
	if c := s.lookup(k); c != nil {
		return c.Entities()
	}
	return nil
}

// Len returns the number of cached records of kind k.
func (s *Set) Len(k entity.Kind) int {
	if c := s.lookup(k); c != nil {
		return c.Len()
	}
	return 0
}
