package ports

import (
	"context"
	"errors"

	"github.com/softdeskhq/softdesk/internal/domain"
)

// ErrDuplicate is returned by ContributorRepository.Add when a row for the
// pair already exists. Stores derive it from their uniqueness constraint so
// concurrent duplicate adds can never produce two rows.
var ErrDuplicate = errors.New("row already exists")

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID domain.UserID) error
}

// ProjectRepository defines persistence for projects. Create must persist
// the project and the author's contributor row in one unit of work: if the
// contributor insert fails, the project insert is rolled back.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, projectID domain.ProjectID) error
}

// ContributorRepository defines persistence for (user, project) membership
// pairs. Add must be safe under concurrent duplicate calls: the store's
// uniqueness constraint decides, and a duplicate surfaces as ErrDuplicate,
// never as a second row.
type ContributorRepository interface {
	Add(ctx context.Context, c *domain.Contributor) error
	Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error)
	Exists(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Contributor, error)
}

// IssueRepository defines persistence for issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, issueID domain.IssueID) (*domain.Issue, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID, limit, offset int) ([]*domain.Issue, error)
	Update(ctx context.Context, issue *domain.Issue) error
	Delete(ctx context.Context, issueID domain.IssueID) error
}

// CommentRepository defines persistence for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, commentID domain.CommentID) (*domain.Comment, error)
	ListByIssue(ctx context.Context, issueID domain.IssueID, limit, offset int) ([]*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, commentID domain.CommentID) error
}
