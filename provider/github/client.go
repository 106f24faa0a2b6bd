// Copyright © 2024 The GHLS authors

// Package github implements provider.Provider against the GitHub REST API
// and the HTML wiki index.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider"
)

const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultPerPage = 100
	userAgent      = "ghls"
	maxBodyBytes   = 16 << 20
	tracerName     = "ghls/provider/github"
)

var log = commonlog.GetLogger("ghls.provider.github")

// Client talks to GitHub. The zero value is not usable; use New.
type Client struct {
	http    *http.Client
	apiURL  string
	host    string
	token   string
	perPage int
}

var _ provider.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIURL points the client at a GitHub Enterprise API root.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithHost sets the browser host used for the wiki index.
func WithHost(h string) Option {
	return func(c *Client) { c.host = strings.TrimRight(h, "/") }
}

// WithPerPage sets the page size of list calls.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		apiURL:  DefaultAPIURL,
		host:    entity.DefaultHost,
		token:   token,
		perPage: DefaultPerPage,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListIssues lists issues and pull requests in every state.
func (c *Client) ListIssues(ctx context.Context, owner, repo string, page int) ([]*entity.Issue, error) {
	q := c.pageQuery(page)
	q.Set("state", "all")
	res, err := c.getJSON(ctx, "list issues", c.apiURL+"/repos/"+url.PathEscape(owner)+"/"+url.PathEscape(repo)+"/issues", q)
	if err != nil {
		return nil, err
	}
	var issues []*entity.Issue
	res.ForEach(func(_, v gjson.Result) bool {
		issues = append(issues, &entity.Issue{
			Number: int(v.Get("number").Int()),
			State:  entity.ParseIssueState(v.Get("state").String()),
			Title:  v.Get("title").String(),
			Body:   v.Get("body").String(),
			URL:    v.Get("html_url").String(),
		})
		return true
	})
	return issues, nil
}

// ListMembers lists the members of an organization.
func (c *Client) ListMembers(ctx context.Context, org string, page int) ([]*entity.Member, error) {
	res, err := c.getJSON(ctx, "list members", c.apiURL+"/orgs/"+url.PathEscape(org)+"/members", c.pageQuery(page))
	if err != nil {
		return nil, err
	}
	return parseLogins(res), nil
}

// ListRepositories lists repositories of the authenticated user with the
// given affiliation.
func (c *Client) ListRepositories(ctx context.Context, affiliation provider.Affiliation, page int) ([]*entity.Repository, error) {
	q := c.pageQuery(page)
	q.Set("affiliation", string(affiliation))
	res, err := c.getJSON(ctx, "list repositories", c.apiURL+"/user/repos", q)
	if err != nil {
		return nil, err
	}
	var repos []*entity.Repository
	res.ForEach(func(_, v gjson.Result) bool {
		repos = append(repos, &entity.Repository{
			Owner:       v.Get("owner.login").String(),
			Name:        v.Get("name").String(),
			Description: v.Get("description").String(),
		})
		return true
	})
	return repos, nil
}

// SearchUsers searches users whose login or name matches query.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]*entity.Member, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("per_page", strconv.Itoa(limit))
	}
	res, err := c.getJSON(ctx, "search users", c.apiURL+"/search/users", q)
	if err != nil {
		return nil, err
	}
	members := parseLogins(res.Get("items"))
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

func parseLogins(res gjson.Result) []*entity.Member {
	var members []*entity.Member
	res.ForEach(func(_, v gjson.Result) bool {
		if login := v.Get("login").String(); login != "" {
			members = append(members, &entity.Member{Login: login})
		}
		return true
	})
	return members
}

func (c *Client) pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	return q
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, q url.Values) (gjson.Result, error) {
	body, err := c.get(ctx, op, endpoint, q, "application/vnd.github+json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &provider.Error{Op: op, Err: errors.New("invalid JSON response")}
	}
	return gjson.ParseBytes(body), nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, q url.Values, accept string) (body []byte, err error) {
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(semconv.HTTPRequestMethodGet, semconv.URLFull(endpoint))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &provider.Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	log.Debugf("GET %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &provider.Error{Op: op, Err: fmt.Errorf("%w: %w", provider.ErrUnavailable, err)}
	}
	defer resp.Body.Close()
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &provider.Error{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &provider.Error{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}
	return body, nil
}
