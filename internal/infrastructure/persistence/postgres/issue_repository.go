package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

type IssueRepository struct {
	pool *pgxpool.Pool
}

func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

const issueColumns = `id, author_id, project_id, title, description, priority, type, status, created_at`

func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO issues (`+issueColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		issue.ID.UUID, issue.AuthorID.UUID, issue.ProjectID.UUID,
		issue.Title, issue.Description, string(issue.Priority),
		string(issue.Type), string(issue.Status), issue.CreatedAt,
	)
	return err
}

func (r *IssueRepository) GetByID(ctx context.Context, issueID domain.IssueID) (*domain.Issue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, issueID.UUID)
	return scanIssue(row)
}

func (r *IssueRepository) ListByProject(ctx context.Context, projectID domain.ProjectID, limit, offset int) ([]*domain.Issue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		projectID.UUID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

func (r *IssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE issues SET title = $1, description = $2, priority = $3, type = $4, status = $5
		 WHERE id = $6`,
		issue.Title, issue.Description, string(issue.Priority),
		string(issue.Type), string(issue.Status), issue.ID.UUID,
	)
	return err
}

func (r *IssueRepository) Delete(ctx context.Context, issueID domain.IssueID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, issueID.UUID)
	return err
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	var i domain.Issue
	var priority, typ, status string
	err := row.Scan(&i.ID.UUID, &i.AuthorID.UUID, &i.ProjectID.UUID,
		&i.Title, &i.Description, &priority, &typ, &status, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.Priority = domain.IssuePriority(priority)
	i.Type = domain.IssueType(typ)
	i.Status = domain.IssueStatus(status)
	return &i, nil
}

var _ ports.IssueRepository = (*IssueRepository)(nil)
