package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID is a value object for project identity.
type ProjectID struct{ uuid.UUID }

// NewProjectID creates a new ProjectID from uuid.
func NewProjectID(id uuid.UUID) ProjectID { return ProjectID{UUID: id} }

// String returns the canonical string form.
func (p ProjectID) String() string { return p.UUID.String() }

// ProjectDescription is the fixed category enum a project is filed under.
// It is not free text.
type ProjectDescription string

const (
	ProjectBackend  ProjectDescription = "BACKEND"
	ProjectFrontend ProjectDescription = "FRONTEND"
	ProjectIOS      ProjectDescription = "IOS"
	ProjectAndroid  ProjectDescription = "ANDROID"
)

// Valid reports whether d is one of the enumerated categories.
func (d ProjectDescription) Valid() bool {
	switch d {
	case ProjectBackend, ProjectFrontend, ProjectIOS, ProjectAndroid:
		return true
	}
	return false
}

// Project is the root of the resource hierarchy. AuthorID is set from the
// authenticated actor at creation and never changes; the author is always a
// contributor of its own project.
type Project struct {
	ID          ProjectID
	AuthorID    UserID
	Title       string
	Description ProjectDescription
	CreatedAt   time.Time
}

// Contributor links a user to a project, unique per pair. Membership grants
// read access to the project and issue/comment authorship within it.
type Contributor struct {
	UserID    UserID
	ProjectID ProjectID
	CreatedAt time.Time
}
