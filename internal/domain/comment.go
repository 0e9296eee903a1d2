package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentID is a value object for comment identity (a client-opaque UUID).
type CommentID struct{ uuid.UUID }

// NewCommentID creates a new CommentID from uuid.
func NewCommentID(id uuid.UUID) CommentID { return CommentID{UUID: id} }

// String returns the canonical string form.
func (c CommentID) String() string { return c.UUID.String() }

// Comment belongs to an issue (immutable, taken from the request path). Its
// author is always the authenticated actor that created it.
type Comment struct {
	ID          CommentID
	AuthorID    UserID
	IssueID     IssueID
	Description string
	CreatedAt   time.Time
}
