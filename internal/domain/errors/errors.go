package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrIssueNotFound        = errors.New("issue not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrUnderage             = errors.New("user must be at least 15 years old")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAuthorNotContributor = errors.New("issue author must be a contributor of the project")
)
