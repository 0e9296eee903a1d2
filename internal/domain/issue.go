package domain

import (
	"time"

	"github.com/google/uuid"
)

// IssueID is a value object for issue identity.
type IssueID struct{ uuid.UUID }

// NewIssueID creates a new IssueID from uuid.
func NewIssueID(id uuid.UUID) IssueID { return IssueID{UUID: id} }

// String returns the canonical string form.
func (i IssueID) String() string { return i.UUID.String() }

// IssuePriority enum.
type IssuePriority string

const (
	PriorityLow    IssuePriority = "LOW"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityHigh   IssuePriority = "HIGH"
)

// Valid reports whether p is one of the enumerated priorities.
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueType enum.
type IssueType string

const (
	TypeBug     IssueType = "BUG"
	TypeFeature IssueType = "FEATURE"
	TypeTask    IssueType = "TASK"
)

// Valid reports whether t is one of the enumerated issue types.
func (t IssueType) Valid() bool {
	switch t {
	case TypeBug, TypeFeature, TypeTask:
		return true
	}
	return false
}

// IssueStatus enum. Any write-authorized actor may set any status in any
// order; there is no workflow engine.
type IssueStatus string

const (
	StatusTodo       IssueStatus = "TODO"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusFinished   IssueStatus = "FINISHED"
)

// Valid reports whether s is one of the enumerated statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// Issue belongs to a project (immutable, taken from the request path). Its
// author must be a contributor of that project at creation time.
type Issue struct {
	ID          IssueID
	AuthorID    UserID
	ProjectID   ProjectID
	Title       string
	Description string
	Priority    IssuePriority
	Type        IssueType
	Status      IssueStatus
	CreatedAt   time.Time
}
