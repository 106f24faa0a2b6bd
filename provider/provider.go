// Copyright © 2024 The GHLS authors

// Package provider declares the remote metadata source the session pulls
// entity records from.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/luthersystems/ghls/entity"
)

// Affiliation selects which repositories ListRepositories returns,
// relative to the authenticated user.
type Affiliation string

const (
	AffiliationOwner              Affiliation = "owner"
	AffiliationCollaborator       Affiliation = "collaborator"
	AffiliationOrganizationMember Affiliation = "organization_member"
)

// Affiliations lists every affiliation in the order the session merges
// them; later entries overwrite earlier ones on duplicate keys.
var Affiliations = []Affiliation{
	AffiliationOwner,
	AffiliationCollaborator,
	AffiliationOrganizationMember,
}

// Provider is a paged source of entity records. Page numbers start at 1.
// An empty page marks the end of a listing.
type Provider interface {
	ListIssues(ctx context.Context, owner, repo string, page int) ([]*entity.Issue, error)
	ListMembers(ctx context.Context, org string, page int) ([]*entity.Member, error)
	ListRepositories(ctx context.Context, affiliation Affiliation, page int) ([]*entity.Repository, error)
	ListWikiPages(ctx context.Context, owner, repo string) ([]*entity.WikiPage, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*entity.Member, error)
}

// ErrUnavailable is wrapped by errors returned when the remote service
// cannot be reached at all.
var ErrUnavailable = errors.New("provider unavailable")

// Error describes a failed remote call.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
