package authz

import "github.com/softdeskhq/softdesk/internal/domain"

// Context carries the facts a permission decision runs against. It is
// populated once by the routing layer (actor from the auth middleware,
// project from the nested-path resolver) and never re-derived inside
// policy code.
type Context struct {
	// Actor is the authenticated user, or nil for anonymous requests.
	Actor *domain.User
	// Project is the owning project for nested issue/comment routes and
	// for project detail routes. Nil on routes without project scope.
	Project *domain.Project
}

// Authenticated reports whether an actor is present.
func (c Context) Authenticated() bool { return c.Actor != nil }

// Target describes the object of an object-level check: its author and,
// for the user resource, its own identity.
type Target struct {
	// ID is the object's identity as a user, only meaningful for
	// ResourceUser where the object and the account coincide.
	ID domain.UserID
	// AuthorID is the recorded author of the object (project, issue or
	// comment author).
	AuthorID domain.UserID
}

// UserTarget builds the Target for a user object.
func UserTarget(u *domain.User) Target {
	return Target{ID: u.ID, AuthorID: u.ID}
}

// ProjectTarget builds the Target for a project object.
func ProjectTarget(p *domain.Project) Target {
	return Target{AuthorID: p.AuthorID}
}

// IssueTarget builds the Target for an issue object.
func IssueTarget(i *domain.Issue) Target {
	return Target{AuthorID: i.AuthorID}
}

// CommentTarget builds the Target for a comment object.
func CommentTarget(c *domain.Comment) Target {
	return Target{AuthorID: c.AuthorID}
}
