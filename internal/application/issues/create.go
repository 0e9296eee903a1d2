package issues

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/softdeskhq/softdesk/internal/application/contributors"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

type CreateInput struct {
	// Project is the owning project, resolved from the request path.
	Project *domain.Project
	// Actor is the authenticated user creating the issue.
	Actor *domain.User
	// AuthorID is the issue author. The zero value means the actor.
	AuthorID    domain.UserID
	Title       string
	Description string
	Priority    domain.IssuePriority
	Type        domain.IssueType
	Status      domain.IssueStatus
}

type CreateResult struct {
	Issue *domain.Issue
}

// Create persists an issue on a project. An explicit author naming someone
// other than the actor must be a contributor of the project; a violation
// is a validation failure raised before anything is written.
type Create struct {
	issues  ports.IssueRepository
	members *contributors.Registry
}

func NewCreate(issues ports.IssueRepository, members *contributors.Registry) *Create {
	return &Create{issues: issues, members: members}
}

func (uc *Create) Execute(ctx context.Context, input CreateInput) (*CreateResult, error) {
	authorID := input.AuthorID
	if authorID == (domain.UserID{}) {
		authorID = input.Actor.ID
	}
	ok, err := uc.members.IsContributor(ctx, authorID, input.Project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrAuthorNotContributor
	}
	status := input.Status
	if status == "" {
		status = domain.StatusTodo
	}
	issue := &domain.Issue{
		ID:          domain.NewIssueID(uuid.New()),
		AuthorID:    authorID,
		ProjectID:   input.Project.ID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Type:        input.Type,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	if err := uc.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return &CreateResult{Issue: issue}, nil
}
