// Copyright © 2024 The GHLS authors

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/ghls/entity"
)

func TestPutAndGet(t *testing.T) {
	s := NewSet()
	n := s.Issues.Put(
		&entity.Issue{Number: 1, Title: "first"},
		nil,
		&entity.Issue{Number: 2, Title: "second"},
	)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.Issues.Len())

	got, ok := s.Issues.Get("second")
	require.True(t, ok)
	assert.Equal(t, 2, got.Number)

	_, ok = s.Issues.Get("third")
	assert.False(t, ok)
}

func TestDuplicateKeysLastWriterWins(t *testing.T) {
	s := NewSet()
	s.Issues.Put(&entity.Issue{Number: 1, Title: "Flaky test"})
	s.Issues.Put(&entity.Issue{Number: 9, Title: "Flaky test"})
	assert.Equal(t, 1, s.Issues.Len())
	got, ok := s.Issues.Get("Flaky test")
	require.True(t, ok)
	assert.Equal(t, 9, got.Number)
}

func TestRepositoriesKeyedByFullName(t *testing.T) {
	s := NewSet()
	s.Repositories.Put(
		&entity.Repository{Owner: "acme", Name: "tool"},
		&entity.Repository{Owner: "other", Name: "tool"},
	)
	assert.Equal(t, 2, s.Len(entity.KindRepository))
	_, ok := s.Repositories.Get("other/tool")
	assert.True(t, ok)
}

func TestEntitiesAndFind(t *testing.T) {
	s := NewSet()
	s.Members.Put(&entity.Member{Login: "alice"}, &entity.Member{Login: "bob"})

	ents := s.Entities(entity.KindMember)
	require.Len(t, ents, 2)
	var logins []string
	for _, e := range ents {
		assert.Equal(t, entity.KindMember, e.Kind)
		logins = append(logins, e.Member.Login)
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, logins)

	m, ok := s.Members.Find(func(m *entity.Member) bool { return m.Login == "bob" })
	require.True(t, ok)
	assert.Equal(t, "bob", m.Login)

	_, ok = s.Members.Find(func(m *entity.Member) bool { return m.Login == "carol" })
	assert.False(t, ok)

	assert.Nil(t, s.Entities(entity.Kind(99)))
	assert.Zero(t, s.Len(entity.Kind(99)))
}

func TestSetDispatchesByKind(t *testing.T) {
	s := NewSet()
	s.Issues.Put(&entity.Issue{Number: 1, Title: "a"}, &entity.Issue{Number: 2, Title: "b"})
	s.Members.Put(&entity.Member{Login: "alice"})
	s.WikiPages.Put(&entity.WikiPage{Title: "Home"})

	for kind, want := range map[entity.Kind]int{
		entity.KindIssue:      2,
		entity.KindMember:     1,
		entity.KindRepository: 0,
		entity.KindWikiPage:   1,
	} {
		assert.Equal(t, want, s.Len(kind), kind.String())
		entities := s.Entities(kind)
		assert.Len(t, entities, want, kind.String())
		for _, e := range entities {
			assert.Equal(t, kind, e.Kind)
		}
	}
	assert.Equal(t, entity.KindRepository, s.Repositories.Kind())
}

func TestEachStopsEarly(t *testing.T) {
	s := NewSet()
	for i := 0; i < 100; i++ {
		s.WikiPages.Put(&entity.WikiPage{Title: fmt.Sprintf("page-%d", i)})
	}
	visited := 0
	s.WikiPages.Each(func(*entity.WikiPage) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s := NewSet()
	const n = 500
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Issues.Put(&entity.Issue{Number: i, Title: fmt.Sprintf("issue %d", i)})
		}
	}()
	for r := 0; r < 2; r++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				for _, e := range s.Entities(entity.KindIssue) {
					assert.NotNil(t, e.Issue)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, n, s.Issues.Len())
}
