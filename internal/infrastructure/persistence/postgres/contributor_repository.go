package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

type ContributorRepository struct {
	pool *pgxpool.Pool
}

func NewContributorRepository(pool *pgxpool.Pool) *ContributorRepository {
	return &ContributorRepository{pool: pool}
}

// Add inserts the membership row. Concurrent duplicate adds resolve at the
// UNIQUE (user_id, project_id) constraint and surface as ErrDuplicate.
func (r *ContributorRepository) Add(ctx context.Context, c *domain.Contributor) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contributors (user_id, project_id, created_at) VALUES ($1, $2, $3)`,
		c.UserID.UUID, c.ProjectID.UUID, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ContributorRepository) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM contributors WHERE project_id = $1 AND user_id = $2`,
		projectID.UUID, userID.UUID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ContributorRepository) Exists(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contributors WHERE project_id = $1 AND user_id = $2)`,
		projectID.UUID, userID.UUID,
	).Scan(&exists)
	return exists, err
}

func (r *ContributorRepository) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Contributor, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, project_id, created_at FROM contributors WHERE project_id = $1 ORDER BY created_at`,
		projectID.UUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Contributor
	for rows.Next() {
		var c domain.Contributor
		if err := rows.Scan(&c.UserID.UUID, &c.ProjectID.UUID, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

var _ ports.ContributorRepository = (*ContributorRepository)(nil)
