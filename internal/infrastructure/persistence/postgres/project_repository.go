package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, author_id, title, description, created_at`

// Create inserts the project and its author's contributor row in one
// transaction, so a project can never exist without its author as a
// contributor.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		project.ID.UUID, project.AuthorID.UUID, project.Title,
		string(project.Description), project.CreatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO contributors (user_id, project_id, created_at) VALUES ($1, $2, $3)`,
		project.AuthorID.UUID, project.ID.UUID, time.Now(),
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID.UUID)
	return scanProject(row)
}

func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE projects SET title = $1, description = $2 WHERE id = $3`,
		project.Title, string(project.Description), project.ID.UUID,
	)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID domain.ProjectID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID.UUID)
	return err
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var description string
	err := row.Scan(&p.ID.UUID, &p.AuthorID.UUID, &p.Title, &description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Description = domain.ProjectDescription(description)
	return &p, nil
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
