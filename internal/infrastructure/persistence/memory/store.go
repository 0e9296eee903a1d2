// Package memory is an in-process implementation of the persistence ports,
// suitable for tests and single-instance development runs. It mirrors the
// SQL schema's semantics: uniqueness on (user, project) contributor pairs
// and cascading deletes down the comment -> issue -> project chain.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

// Store holds every table behind one mutex. Operations copy entities on
// the way in and out so callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[domain.UserID]*domain.User
	projects     map[domain.ProjectID]*domain.Project
	contributors map[contribKey]*domain.Contributor
	issues       map[domain.IssueID]*domain.Issue
	comments     map[domain.CommentID]*domain.Comment
}

type contribKey struct {
	userID    domain.UserID
	projectID domain.ProjectID
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[domain.UserID]*domain.User),
		projects:     make(map[domain.ProjectID]*domain.Project),
		contributors: make(map[contribKey]*domain.Contributor),
		issues:       make(map[domain.IssueID]*domain.Issue),
		comments:     make(map[domain.CommentID]*domain.Comment),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() ports.UserRepository { return (*userRepo)(s) }

// Projects returns the project repository view of the store.
func (s *Store) Projects() ports.ProjectRepository { return (*projectRepo)(s) }

// Contributors returns the contributor repository view of the store.
func (s *Store) Contributors() ports.ContributorRepository { return (*contributorRepo)(s) }

// Issues returns the issue repository view of the store.
func (s *Store) Issues() ports.IssueRepository { return (*issueRepo)(s) }

// Comments returns the comment repository view of the store.
func (s *Store) Comments() ports.CommentRepository { return (*commentRepo)(s) }

type userRepo Store

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTakenLocked(user.Username, user.ID) {
		return domerrors.ErrUsernameTaken
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[userID]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTakenLocked(user.Username, user.ID) {
		return domerrors.ErrUsernameTaken
	}
	if _, ok := r.users[user.ID]; ok {
		u := *user
		r.users[user.ID] = &u
	}
	return nil
}

// usernameTakenLocked mirrors the SQL schema's UNIQUE (username).
func (r *userRepo) usernameTakenLocked(username string, self domain.UserID) bool {
	for _, u := range r.users {
		if u.Username == username && u.ID != self {
			return true
		}
	}
	return false
}

func (r *userRepo) Delete(ctx context.Context, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	for k := range r.contributors {
		if k.userID == userID {
			delete(r.contributors, k)
		}
	}
	for id, p := range r.projects {
		if p.AuthorID == userID {
			(*Store)(r).deleteProjectLocked(id)
		}
	}
	for id, i := range r.issues {
		if i.AuthorID == userID {
			(*Store)(r).deleteIssueLocked(id)
		}
	}
	for id, c := range r.comments {
		if c.AuthorID == userID {
			delete(r.comments, id)
		}
	}
	return nil
}

type projectRepo Store

func (r *projectRepo) Create(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *project
	r.projects[project.ID] = &p
	key := contribKey{userID: project.AuthorID, projectID: project.ID}
	if _, ok := r.contributors[key]; !ok {
		r.contributors[key] = &domain.Contributor{
			UserID:    project.AuthorID,
			ProjectID: project.ID,
			CreatedAt: project.CreatedAt,
		}
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.projects[projectID]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *projectRepo) List(ctx context.Context, limit, offset int) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		c := *p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (r *projectRepo) Update(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; ok {
		p := *project
		r.projects[project.ID] = &p
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, projectID domain.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	(*Store)(r).deleteProjectLocked(projectID)
	return nil
}

func (s *Store) deleteProjectLocked(projectID domain.ProjectID) {
	delete(s.projects, projectID)
	for k := range s.contributors {
		if k.projectID == projectID {
			delete(s.contributors, k)
		}
	}
	for id, i := range s.issues {
		if i.ProjectID == projectID {
			s.deleteIssueLocked(id)
		}
	}
}

func (s *Store) deleteIssueLocked(issueID domain.IssueID) {
	delete(s.issues, issueID)
	for id, c := range s.comments {
		if c.IssueID == issueID {
			delete(s.comments, id)
		}
	}
}

type contributorRepo Store

func (r *contributorRepo) Add(ctx context.Context, c *domain.Contributor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := contribKey{userID: c.UserID, projectID: c.ProjectID}
	if _, ok := r.contributors[key]; ok {
		return ports.ErrDuplicate
	}
	cp := *c
	r.contributors[key] = &cp
	return nil
}

func (r *contributorRepo) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := contribKey{userID: userID, projectID: projectID}
	if _, ok := r.contributors[key]; !ok {
		return false, nil
	}
	delete(r.contributors, key)
	return true, nil
}

func (r *contributorRepo) Exists(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contributors[contribKey{userID: userID, projectID: projectID}]
	return ok, nil
}

func (r *contributorRepo) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Contributor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Contributor
	for _, c := range r.contributors {
		if c.ProjectID == projectID {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

type issueRepo Store

func (r *issueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := *issue
	r.issues[issue.ID] = &i
	return nil
}

func (r *issueRepo) GetByID(ctx context.Context, issueID domain.IssueID) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.issues[issueID]; ok {
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (r *issueRepo) ListByProject(ctx context.Context, projectID domain.ProjectID, limit, offset int) ([]*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Issue
	for _, i := range r.issues {
		if i.ProjectID == projectID {
			c := *i
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (r *issueRepo) Update(ctx context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; ok {
		i := *issue
		r.issues[issue.ID] = &i
	}
	return nil
}

func (r *issueRepo) Delete(ctx context.Context, issueID domain.IssueID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	(*Store)(r).deleteIssueLocked(issueID)
	return nil
}

type commentRepo Store

func (r *commentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *comment
	r.comments[comment.ID] = &c
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, commentID domain.CommentID) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.comments[commentID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *commentRepo) ListByIssue(ctx context.Context, issueID domain.IssueID, limit, offset int) ([]*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Comment
	for _, c := range r.comments {
		if c.IssueID == issueID {
			cp := *c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (r *commentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[comment.ID]; ok {
		c := *comment
		r.comments[comment.ID] = &c
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, commentID domain.CommentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, commentID)
	return nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
