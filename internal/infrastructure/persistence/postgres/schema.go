package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements applied at startup. Deletes cascade down the
// comment -> issue -> project chain, and the contributors table carries
// the uniqueness constraint that makes duplicate adds race-safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		age INTEGER NOT NULL CHECK (age >= 15),
		can_be_contacted BOOLEAN NOT NULL DEFAULT FALSE,
		can_data_be_shared BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL CHECK (description IN ('BACKEND', 'FRONTEND', 'IOS', 'ANDROID')),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contributors (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, project_id)
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'TODO',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		issue_id UUID NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contributors_project ON contributors(project_id)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
