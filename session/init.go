// Copyright © 2024 The GHLS authors

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider"
)

const tracerName = "ghls/session"

// ErrNoRepository is reported for categories scoped to a repository when
// the session has no owner or repository.
var ErrNoRepository = errors.New("owner and repository are not configured")

// Category is the outcome of loading one entity kind.
type Category struct {
	Kind entity.Kind
	// Fetched counts records received from the provider, Cached the records
	// left in the cache after duplicate keys collapsed.
	Fetched int
	Cached  int
	Err     error
}

// Report summarizes an Initialize run. Categories are ordered issues,
// members, repositories, wiki pages.
type Report struct {
	Categories []Category
	Elapsed    time.Duration
}

// Category returns the outcome for kind k.
func (r Report) Category(k entity.Kind) Category {
	for _, c := range r.Categories {
		if c.Kind == k {
			return c
		}
	}
	return Category{Kind: k}
}

// Err joins the errors of every category.
func (r Report) Err() error {
	var errs []error
	for _, c := range r.Categories {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Kind, c.Err))
		}
	}
	return errors.Join(errs...)
}

func (r Report) String() string {
	parts := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		parts = append(parts, fmt.Sprintf("%d %s", c.Cached, c.Kind))
	}
	return fmt.Sprintf("loaded %s in %s", strings.Join(parts, ", "), r.Elapsed.Round(time.Millisecond))
}

// Initialize fills the four caches concurrently. A failing or empty
// category is logged and leaves whatever was fetched before the failure in
// its cache; Initialize itself never fails.
func (s *Session) Initialize(ctx context.Context) Report {
	start := time.Now()
	loaders := []struct {
		kind entity.Kind
		load func(context.Context) (int, error)
	}{
		{entity.KindIssue, s.loadIssues},
		{entity.KindMember, s.loadMembers},
		{entity.KindRepository, s.loadRepositories},
		{entity.KindWikiPage, s.loadWikiPages},
	}

	report := Report{Categories: make([]Category, len(loaders))}
	var wg conc.WaitGroup
	for i, l := range loaders {
		i, l := i, l
		wg.Go(func() {
			report.Categories[i] = s.runCategory(ctx, l.kind, l.load)
		})
	}
	wg.Wait()
	report.Elapsed = time.Since(start)
	log.Infof("%s", report)
	return report
}

func (s *Session) runCategory(ctx context.Context, kind entity.Kind, load func(context.Context) (int, error)) Category {
	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "load "+kind.String())
	defer span.End()

	c := Category{Kind: kind}
	var pc panics.Catcher
	pc.Try(func() {
		c.Fetched, c.Err = load(ctx)
	})
	if r := pc.Recovered(); r != nil {
		c.Err = r.AsError()
	}
	c.Cached = s.Caches.Len(kind)

	span.SetAttributes(
		attribute.String("ghls.kind", kind.String()),
		attribute.Int("ghls.fetched", c.Fetched),
		attribute.Int("ghls.cached", c.Cached),
	)
	if c.Err != nil {
		span.RecordError(c.Err)
		span.SetStatus(codes.Error, c.Err.Error())
		log.Errorf("loading %s: %s", kind, c.Err)
	}
	if c.Cached == 0 {
		log.Warningf("no %s found", kind)
	}
	return c
}

func (s *Session) hasRepository() bool {
	return s.Owner != "" && s.Repo != ""
}

func (s *Session) loadIssues(ctx context.Context) (int, error) {
	if !s.hasRepository() {
		return 0, ErrNoRepository
	}
	return paginate(ctx, func(ctx context.Context, page int) ([]*entity.Issue, error) {
		return s.Provider.ListIssues(ctx, s.Owner, s.Repo, page)
	}, s.Caches.Issues.Put)
}

func (s *Session) loadMembers(ctx context.Context) (int, error) {
	if s.Owner == "" {
		return 0, ErrNoRepository
	}
	return paginate(ctx, func(ctx context.Context, page int) ([]*entity.Member, error) {
		return s.Provider.ListMembers(ctx, s.Owner, page)
	}, s.Caches.Members.Put)
}

// loadRepositories walks the affiliations in order so that a repository
// listed under several of them ends up as the record of the last one.
func (s *Session) loadRepositories(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, aff := range provider.Affiliations {
		aff := aff
		n, err := paginate(ctx, func(ctx context.Context, page int) ([]*entity.Repository, error) {
			return s.Provider.ListRepositories(ctx, aff, page)
		}, s.Caches.Repositories.Put)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("affiliation %s: %w", aff, err))
		}
	}
	return total, errors.Join(errs...)
}

func (s *Session) loadWikiPages(ctx context.Context) (int, error) {
	if !s.hasRepository() {
		return 0, ErrNoRepository
	}
	pages, err := s.Provider.ListWikiPages(ctx, s.Owner, s.Repo)
	n := s.Caches.WikiPages.Put(pages...)
	n += s.Caches.WikiPages.Put(HomePage(s.Owner, s.Repo))
	return n, err
}

// HomePage is the wiki landing page, which the page index does not list
// under its own title.
func HomePage(owner, repo string) *entity.WikiPage {
	return &entity.WikiPage{
		Title:       "Home",
		RelativeURI: "/" + owner + "/" + repo + "/wiki",
	}
}

// paginate requests pages starting at 1 and stores each one until a page
// comes back empty or with an error. Records stored before an error stay
// cached.
func paginate[T any](ctx context.Context, fetch func(context.Context, int) ([]*T, error), put func(...*T) int) (int, error) {
	total := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		records, err := fetch(ctx, page)
		if err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}
		if len(records) == 0 {
			return total, nil
		}
		total += put(records...)
		log.Debugf("page %d: %d records", page, len(records))
	}
}
