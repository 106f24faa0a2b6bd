// Copyright © 2024 The GHLS authors

// Package session ties together the open documents, the entity caches and
// the provider that fills them.
package session

import (
	"time"

	"github.com/tliron/commonlog"

	"github.com/luthersystems/ghls/cache"
	"github.com/luthersystems/ghls/document"
	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider"
)

const (
	DefaultLocalBudget  = 200 * time.Millisecond
	DefaultRemoteBudget = 3 * time.Second
)

var log = commonlog.GetLogger("ghls.session")

// Session owns the document store and the entity caches of one language
// server process. Completion and hover read from it while Initialize fills
// the caches in the background.
type Session struct {
	Docs     *document.Store
	Caches   *cache.Set
	Provider provider.Provider
	Renderer entity.Renderer

	// Owner and Repo scope the issue, member and wiki listings.
	Owner string
	Repo  string

	// LocalBudget bounds completions served from the caches, RemoteBudget
	// those that call the provider.
	LocalBudget  time.Duration
	RemoteBudget time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithRepository scopes the session to owner/repo.
func WithRepository(owner, repo string) Option {
	return func(s *Session) {
		s.Owner = owner
		s.Repo = repo
	}
}

// WithHost sets the browser host used when rendering links.
func WithHost(host string) Option {
	return func(s *Session) { s.Renderer = entity.NewRenderer(host) }
}

// WithBudgets overrides the completion time budgets. Non-positive values
// keep the defaults.
func WithBudgets(local, remote time.Duration) Option {
	return func(s *Session) {
		if local > 0 {
			s.LocalBudget = local
		}
		if remote > 0 {
			s.RemoteBudget = remote
		}
	}
}

// New creates a session with empty caches and no open documents.
func New(p provider.Provider, opts ...Option) *Session {
	s := &Session{
		Docs:         document.NewStore(),
		Caches:       cache.NewSet(),
		Provider:     p,
		Renderer:     entity.NewRenderer(""),
		LocalBudget:  DefaultLocalBudget,
		RemoteBudget: DefaultRemoteBudget,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
