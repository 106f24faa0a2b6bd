// Copyright © 2024 The GHLS authors

// Package entity defines the project metadata records offered as
// completions and hover text, and how each kind is rendered.
package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// DefaultHost is the browser host used to build links.
const DefaultHost = "https://github.com"

// detailWidth is the column at which issue and repository bodies are
// wrapped in detail text.
const detailWidth = 80

// IssueState is the open/closed state of an issue or pull request.
type IssueState int

const (
	StateOpen IssueState = iota
	StateClosed
)

func (s IssueState) String() string {
	if s == StateOpen {
		return "Open"
	}
	return "Closed"
}

// ParseIssueState maps the provider's state string to an IssueState.
// Anything other than "open" is treated as closed.
func ParseIssueState(s string) IssueState {
	if strings.EqualFold(s, "open") {
		return StateOpen
	}
	return StateClosed
}

// Issue is an issue or pull request.
type Issue struct {
	Number int
	State  IssueState
	Title  string
	Body   string
	URL    string
}

// Member is a member of the owning organization.
type Member struct {
	Login string
}

// Repository is a repository the user has access to.
type Repository struct {
	Owner       string
	Name        string
	Description string
}

// FullName returns "<owner>/<name>".
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// WikiPage is a page of the repository wiki.
type WikiPage struct {
	Title       string
	RelativeURI string
}

// Kind tags the payload carried by an Entity.
type Kind int

const (
	KindIssue Kind = iota + 1
	KindMember
	KindRepository
	KindWikiPage
)

func (k Kind) String() string {
	switch k {
	case KindIssue:
		return "issue"
	case KindMember:
		return "member"
	case KindRepository:
		return "repository"
	case KindWikiPage:
		return "wiki"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind name, as printed by String, back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "issue", "issues":
		return KindIssue, true
	case "member", "members":
		return KindMember, true
	case "repository", "repositories", "repo", "repos":
		return KindRepository, true
	case "wiki", "wikis", "page", "pages":
		return KindWikiPage, true
	}
	return 0, false
}

// Entity is a tagged union over the record kinds. Exactly the payload
// selected by Kind is non-nil.
type Entity struct {
	Kind       Kind
	Issue      *Issue
	Member     *Member
	Repository *Repository
	WikiPage   *WikiPage
}

// FromIssue wraps an issue.
func FromIssue(i *Issue) Entity { return Entity{Kind: KindIssue, Issue: i} }

// FromMember wraps a member.
func FromMember(m *Member) Entity { return Entity{Kind: KindMember, Member: m} }

// FromRepository wraps a repository.
func FromRepository(r *Repository) Entity { return Entity{Kind: KindRepository, Repository: r} }

// FromWikiPage wraps a wiki page.
func FromWikiPage(w *WikiPage) Entity { return Entity{Kind: KindWikiPage, WikiPage: w} }

// Renderer renders entities into completion labels, detail text and
// markdown link snippets.
type Renderer struct {
	// Host is the browser base URL, without a trailing slash.
	Host string
}

// NewRenderer returns a renderer for host. An empty host means DefaultHost.
func NewRenderer(host string) Renderer {
	host = strings.TrimRight(host, "/")
	if host == "" {
		host = DefaultHost
	}
	return Renderer{Host: host}
}

// Label is the short text shown in a completion list.
func (r Renderer) Label(e Entity) string {
	switch e.Kind {
	case KindIssue:
		return issueLabel(e.Issue)
	case KindMember:
		return e.Member.Login
	case KindRepository:
		return e.Repository.FullName()
	case KindWikiPage:
		return e.WikiPage.Title
	}
	return ""
}

// Detail is the longer text shown alongside a completion or in a hover.
func (r Renderer) Detail(e Entity) string {
	switch e.Kind {
	case KindIssue:
		body := e.Issue.Body
		if strings.TrimSpace(body) == "" {
			body = e.Issue.Title
		}
		return issueLabel(e.Issue) + "\n\n" + wrap(body)
	case KindMember:
		return e.Member.Login
	case KindRepository:
		desc := e.Repository.Description
		if desc == "" {
			desc = "No description."
		}
		return r.Edit(e) + "\n" + wrap(desc)
	case KindWikiPage:
		return e.WikiPage.Title
	}
	return ""
}

// Edit is the markdown link inserted when a completion is accepted.
func (r Renderer) Edit(e Entity) string {
	switch e.Kind {
	case KindIssue:
		return fmt.Sprintf("[#%d: %s](%s)", e.Issue.Number, e.Issue.Title, e.Issue.URL)
	case KindMember:
		return r.UserLink(e.Member.Login)
	case KindRepository:
		name := e.Repository.FullName()
		return fmt.Sprintf("[%s](%s/%s)", name, r.Host, name)
	case KindWikiPage:
		return fmt.Sprintf("[%s](%s%s)", e.WikiPage.Title, r.Host, e.WikiPage.RelativeURI)
	}
	return ""
}

// UserLink renders a markdown link to a user profile.
func (r Renderer) UserLink(login string) string {
	return fmt.Sprintf("[%s](%s/%s)", login, r.Host, login)
}

// FilterText is the text a completion needle is matched against.
func (r Renderer) FilterText(e Entity) string {
	switch e.Kind {
	case KindIssue:
		return issueLabel(e.Issue) + "\n" + e.Issue.Body
	default:
		return r.Label(e)
	}
}

// IssueLabelPrefix is the prefix every label of issue number n starts with.
func IssueLabelPrefix(n string) string {
	return "#" + n + " "
}

func issueLabel(i *Issue) string {
	return IssueLabelPrefix(strconv.Itoa(i.Number)) + "[" + i.State.String() + "] " + i.Title
}

func wrap(s string) string {
	return wordwrap.String(strings.ReplaceAll(s, "\r\n", "\n"), detailWidth)
}
