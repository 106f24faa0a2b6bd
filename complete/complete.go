// Copyright © 2024 The GHLS authors

// Package complete turns the trigger context in front of the cursor into
// completion items rendered from the session caches or, for user search,
// from the provider.
package complete

import (
	"context"
	"errors"
	"strings"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/unicode/norm"

	"github.com/luthersystems/ghls/document"
	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/session"
	"github.com/luthersystems/ghls/trigger"
)

// SearchLimit caps the number of users returned by a remote search.
const SearchLimit = 10

const tracerName = "ghls/complete"

var log = commonlog.GetLogger("ghls.complete")

// Edit replaces Range with NewText when an item is accepted.
type Edit struct {
	Range   document.Range
	NewText string
}

// Item is one completion candidate.
type Item struct {
	Label  string
	Detail string
	Edit   Edit
	Kind   entity.Kind
}

// Synthesizer computes completions against a session.
type Synthesizer struct {
	session *session.Session
}

// New creates a synthesizer reading from s.
func New(s *session.Session) *Synthesizer {
	return &Synthesizer{session: s}
}

// Complete returns the items for the cursor at pos in uri. An unknown
// document or line is an error; anything else that goes wrong, including
// running out of time, yields an empty list.
func (s *Synthesizer) Complete(ctx context.Context, uri string, pos document.Position) ([]Item, error) {
	tc, err := trigger.FromStore(s.session.Docs, uri, pos)
	if err != nil {
		return nil, err
	}
	log.Debugf("complete %s %q at %d:%d", tc.Kind, tc.Needle, pos.Line, pos.Character)

	var items []Item
	switch tc.Kind {
	case trigger.KindNone:
		return []Item{}, nil
	case trigger.KindUserSearch:
		if tc.Needle == "" || s.session.Provider == nil {
			return []Item{}, nil
		}
		items, err = session.Bounded(ctx, s.session.RemoteBudget, func(ctx context.Context) ([]Item, error) {
			return s.searchUsers(ctx, tc)
		})
	default:
		kind, _ := tc.Kind.Entity()
		items, err = session.Bounded(ctx, s.session.LocalBudget, func(ctx context.Context) ([]Item, error) {
			return s.filter(ctx, kind, tc)
		})
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Debugf("complete %s %q: out of time", tc.Kind, tc.Needle)
		return []Item{}, nil
	case err != nil:
		log.Warningf("complete %s %q: %s", tc.Kind, tc.Needle, err)
		return []Item{}, nil
	}
	return items, nil
}

func (s *Synthesizer) filter(ctx context.Context, kind entity.Kind, tc trigger.Context) ([]Item, error) {
	r := s.session.Renderer
	needle := Fold(tc.Needle)
	items := []Item{}
	for _, e := range s.session.Caches.Entities(kind) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.Contains(Fold(r.FilterText(e)), needle) {
			continue
		}
		items = append(items, s.item(e, tc.Range))
	}
	return items, nil
}

func (s *Synthesizer) searchUsers(ctx context.Context, tc trigger.Context) ([]Item, error) {
	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "search users")
	defer span.End()
	span.SetAttributes(attribute.String("ghls.needle", tc.Needle))

	users, err := s.session.Provider.SearchUsers(ctx, tc.Needle, SearchLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("ghls.results", len(users)))
	items := make([]Item, 0, len(users))
	for _, u := range users {
		items = append(items, s.item(entity.FromMember(u), tc.Range))
	}
	return items, nil
}

func (s *Synthesizer) item(e entity.Entity, rng document.Range) Item {
	r := s.session.Renderer
	return Item{
		Label:  r.Label(e),
		Detail: r.Detail(e),
		Edit:   Edit{Range: rng, NewText: r.Edit(e)},
		Kind:   e.Kind,
	}
}

// Fold normalizes s for case-insensitive containment tests.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
