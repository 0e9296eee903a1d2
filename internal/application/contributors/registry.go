// Package contributors maintains the (user, project) membership pairs and
// the invariant that a project's author is always one of its contributors.
package contributors

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

// AddResult reports the outcome of an Add call.
type AddResult int

const (
	Added AddResult = iota
	AlreadyContributor
)

// RemoveResult reports the outcome of a Remove call.
type RemoveResult int

const (
	Removed RemoveResult = iota
	NotContributor
)

const cacheTTL = 30 * time.Second

// Registry exposes membership lookups and the add/remove operations.
// Author membership is logical: IsContributor answers true for the
// project's author whether or not a row is materialized, so removing the
// author's row never revokes their access.
//
// The Redis cache is optional; with a nil client every lookup goes to the
// store.
type Registry struct {
	repo  ports.ContributorRepository
	cache *redis.Client
	log   zerolog.Logger
}

// NewRegistry builds a registry. cache may be nil.
func NewRegistry(repo ports.ContributorRepository, cache *redis.Client, log zerolog.Logger) *Registry {
	return &Registry{repo: repo, cache: cache, log: log}
}

// IsContributor reports whether user is a contributor of project, the
// author included.
func (r *Registry) IsContributor(ctx context.Context, userID domain.UserID, project *domain.Project) (bool, error) {
	if project == nil {
		return false, nil
	}
	if userID == project.AuthorID {
		return true, nil
	}
	key := cacheKey(project.ID, userID)
	if r.cache != nil {
		if _, err := r.cache.Get(ctx, key).Result(); err == nil {
			return true, nil
		} else if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Msg("membership cache lookup failed")
		}
	}
	exists, err := r.repo.Exists(ctx, project.ID, userID)
	if err != nil {
		return false, err
	}
	if exists && r.cache != nil {
		if err := r.cache.Set(ctx, key, "1", cacheTTL).Err(); err != nil {
			r.log.Warn().Err(err).Msg("membership cache set failed")
		}
	}
	return exists, nil
}

// Add records user as a contributor of project. Adding an existing member
// (the author included, whose row is materialized at project creation) is
// a soft no-op reported as AlreadyContributor.
func (r *Registry) Add(ctx context.Context, project *domain.Project, userID domain.UserID) (AddResult, error) {
	err := r.repo.Add(ctx, &domain.Contributor{
		UserID:    userID,
		ProjectID: project.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return AlreadyContributor, nil
		}
		return 0, err
	}
	return Added, nil
}

// Remove deletes the contributor row for the pair. Removing a user without
// a row is a soft no-op reported as NotContributor. The author's row may
// be removed like any other; their membership survives logically.
func (r *Registry) Remove(ctx context.Context, project *domain.Project, userID domain.UserID) (RemoveResult, error) {
	removed, err := r.repo.Remove(ctx, project.ID, userID)
	if err != nil {
		return 0, err
	}
	if r.cache != nil {
		if err := r.cache.Del(ctx, cacheKey(project.ID, userID)).Err(); err != nil {
			r.log.Warn().Err(err).Msg("membership cache invalidation failed")
		}
	}
	if !removed {
		return NotContributor, nil
	}
	return Removed, nil
}

// ListMembers returns the materialized contributor rows of a project.
func (r *Registry) ListMembers(ctx context.Context, projectID domain.ProjectID) ([]*domain.Contributor, error) {
	return r.repo.ListByProject(ctx, projectID)
}

func cacheKey(projectID domain.ProjectID, userID domain.UserID) string {
	return "contrib:" + projectID.String() + ":" + userID.String()
}
