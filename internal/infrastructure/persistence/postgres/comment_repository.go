package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `id, author_id, issue_id, description, created_at`

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		comment.ID.UUID, comment.AuthorID.UUID, comment.IssueID.UUID,
		comment.Description, comment.CreatedAt,
	)
	return err
}

func (r *CommentRepository) GetByID(ctx context.Context, commentID domain.CommentID) (*domain.Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID.UUID)
	return scanComment(row)
}

func (r *CommentRepository) ListByIssue(ctx context.Context, issueID domain.IssueID, limit, offset int) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE issue_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		issueID.UUID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE comments SET description = $1 WHERE id = $2`,
		comment.Description, comment.ID.UUID,
	)
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, commentID domain.CommentID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID.UUID)
	return err
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID.UUID, &c.AuthorID.UUID, &c.IssueID.UUID, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

var _ ports.CommentRepository = (*CommentRepository)(nil)
