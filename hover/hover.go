// Copyright © 2024 The GHLS authors

// Package hover renders documentation for the markdown link under the
// cursor.
package hover

import (
	"context"
	"strings"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/luthersystems/ghls/document"
	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/session"
)

const tracerName = "ghls/hover"

var log = commonlog.GetLogger("ghls.hover")

// Resolver answers hover requests against a session.
type Resolver struct {
	session *session.Session
}

// New creates a resolver reading from s.
func New(s *session.Session) *Resolver {
	return &Resolver{session: s}
}

// Hover returns markdown describing the link at pos in uri. The boolean is
// false when there is nothing to show. Only an unknown document or line is
// reported as an error.
func (r *Resolver) Hover(ctx context.Context, uri string, pos document.Position) (string, bool, error) {
	line, err := r.session.Docs.Line(uri, pos.Line)
	if err != nil {
		return "", false, err
	}
	target, ok := Extract(line, pos.Character)
	if !ok {
		return "", false, nil
	}
	link := Classify(target)
	log.Debugf("hover %s %q", link.Kind, link.Target)

	switch link.Kind {
	case LinkIssue:
		return r.issue(link)
	case LinkWiki:
		return "Wiki article " + link.ID, true, nil
	case LinkRepository:
		return r.repository(link)
	case LinkUser:
		return r.user(ctx, link)
	}
	return "", false, nil
}

func (r *Resolver) issue(link Link) (string, bool, error) {
	prefix := entity.IssueLabelPrefix(link.ID)
	renderer := r.session.Renderer
	issue, ok := r.session.Caches.Issues.Find(func(i *entity.Issue) bool {
		return strings.HasPrefix(renderer.Label(entity.FromIssue(i)), prefix)
	})
	if !ok {
		log.Debugf("issue %s not cached", link.ID)
		return "", false, nil
	}
	return renderer.Detail(entity.FromIssue(issue)), true, nil
}

func (r *Resolver) repository(link Link) (string, bool, error) {
	repo, ok := r.session.Caches.Repositories.Get(link.Owner + "/" + link.Name)
	if !ok {
		log.Debugf("repository %s/%s not cached", link.Owner, link.Name)
		return "", false, nil
	}
	return r.session.Renderer.Detail(entity.FromRepository(repo)), true, nil
}

// user confirms the login with a single-result search. Any failure hides
// the hover.
func (r *Resolver) user(ctx context.Context, link Link) (string, bool, error) {
	if link.ID == "" || r.session.Provider == nil {
		return "", false, nil
	}
	users, err := session.Bounded(ctx, r.session.RemoteBudget, func(ctx context.Context) ([]*entity.Member, error) {
		ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "lookup user")
		defer span.End()
		span.SetAttributes(attribute.String("ghls.login", link.ID))
		users, err := r.session.Provider.SearchUsers(ctx, link.ID, 1)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return users, err
	})
	if err != nil {
		log.Debugf("user %s: %s", link.ID, err)
		return "", false, nil
	}
	if len(users) == 0 {
		return "", false, nil
	}
	return "User " + users[0].Login, true, nil
}
