// Package resolver turns path-scoped identifiers into the owning entities
// a permission check runs against. Missing entities surface as the
// NotFound sentinels before any policy is consulted, so a request against
// an absent project 404s instead of leaking a Forbidden.
package resolver

import (
	"context"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

// Resolver resolves nested path context against the store.
type Resolver struct {
	projects ports.ProjectRepository
	issues   ports.IssueRepository
	comments ports.CommentRepository
}

// New builds a resolver.
func New(projects ports.ProjectRepository, issues ports.IssueRepository, comments ports.CommentRepository) *Resolver {
	return &Resolver{projects: projects, issues: issues, comments: comments}
}

// Project resolves a project by id. Returns ErrProjectNotFound when absent.
func (r *Resolver) Project(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error) {
	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return p, nil
}

// Issue resolves an issue within a project. An issue that exists but
// belongs to a different project is not reachable through this path and
// reports ErrIssueNotFound.
func (r *Resolver) Issue(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID) (*domain.Issue, error) {
	i, err := r.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if i == nil || i.ProjectID != projectID {
		return nil, domerrors.ErrIssueNotFound
	}
	return i, nil
}

// Comment resolves a comment within an issue, with the same reachability
// rule as Issue.
func (r *Resolver) Comment(ctx context.Context, issueID domain.IssueID, commentID domain.CommentID) (*domain.Comment, error) {
	c, err := r.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IssueID != issueID {
		return nil, domerrors.ErrCommentNotFound
	}
	return c, nil
}

// OwningProject walks from an issue outward to its project, so an
// object-level decision always uses the true owning project regardless of
// the path parameters that were supplied.
func (r *Resolver) OwningProject(ctx context.Context, issue *domain.Issue) (*domain.Project, error) {
	return r.Project(ctx, issue.ProjectID)
}
