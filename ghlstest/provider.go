// Copyright © 2024 The GHLS authors

package ghlstest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider"
)

// Operation names used as keys by Provider.Fail and Provider.Calls.
const (
	OpIssues       = "issues"
	OpMembers      = "members"
	OpRepositories = "repositories"
	OpWikiPages    = "wiki"
	OpSearchUsers  = "search"
)

// Provider is an in-memory provider.Provider. Paged listings are given as
// slices of pages; requests past the last page return an empty page.
type Provider struct {
	Issues       [][]*entity.Issue
	Members      [][]*entity.Member
	Repositories map[provider.Affiliation][][]*entity.Repository
	WikiPages    []*entity.WikiPage
	Users        []*entity.Member

	// Delay is applied to every call. A call whose context ends first
	// returns the context error.
	Delay time.Duration

	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

var _ provider.Provider = (*Provider)(nil)

// Fail makes op return err. A page greater than zero restricts the failure
// to that page.
func (p *Provider) Fail(op string, page int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail == nil {
		p.fail = make(map[string]error)
	}
	p.fail[failKey(op, page)] = err
}

// Calls returns how many times op was invoked.
func (p *Provider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func failKey(op string, page int) string {
	if page <= 0 {
		return op
	}
	return fmt.Sprintf("%s:%d", op, page)
}

func (p *Provider) enter(ctx context.Context, op string, page int) error {
	p.mu.Lock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[op]++
	err := p.fail[op]
	if err == nil {
		err = p.fail[failKey(op, page)]
	}
	p.mu.Unlock()
	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func page[T any](pages [][]T, n int) []T {
	if n < 1 || n > len(pages) {
		return nil
	}
	return pages[n-1]
}

func (p *Provider) ListIssues(ctx context.Context, _, _ string, n int) ([]*entity.Issue, error) {
	if err := p.enter(ctx, OpIssues, n); err != nil {
		return nil, err
	}
	return page(p.Issues, n), nil
}

func (p *Provider) ListMembers(ctx context.Context, _ string, n int) ([]*entity.Member, error) {
	if err := p.enter(ctx, OpMembers, n); err != nil {
		return nil, err
	}
	return page(p.Members, n), nil
}

func (p *Provider) ListRepositories(ctx context.Context, affiliation provider.Affiliation, n int) ([]*entity.Repository, error) {
	if err := p.enter(ctx, OpRepositories, n); err != nil {
		return nil, err
	}
	return page(p.Repositories[affiliation], n), nil
}

func (p *Provider) ListWikiPages(ctx context.Context, _, _ string) ([]*entity.WikiPage, error) {
	if err := p.enter(ctx, OpWikiPages, 0); err != nil {
		return nil, err
	}
	return p.WikiPages, nil
}

// SearchUsers returns the users whose login contains query, ignoring case.
func (p *Provider) SearchUsers(ctx context.Context, query string, limit int) ([]*entity.Member, error) {
	if err := p.enter(ctx, OpSearchUsers, 0); err != nil {
		return nil, err
	}
	var found []*entity.Member
	for _, u := range p.Users {
		if strings.Contains(strings.ToLower(u.Login), strings.ToLower(query)) {
			found = append(found, u)
			if limit > 0 && len(found) == limit {
				break
			}
		}
	}
	return found, nil
}

// IssuePages builds count issues numbered from 1, split into pages of
// size perPage.
func IssuePages(count, perPage int) [][]*entity.Issue {
	var pages [][]*entity.Issue
	var cur []*entity.Issue
	for i := 1; i <= count; i++ {
		cur = append(cur, &entity.Issue{
			Number: i,
			State:  entity.StateOpen,
			Title:  fmt.Sprintf("Issue %d", i),
			URL:    fmt.Sprintf("https://github.com/o/r/issues/%d", i),
		})
		if len(cur) == perPage {
			pages = append(pages, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}
	return pages
}
