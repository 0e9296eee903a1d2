package handlers

import (
	"time"

	"github.com/softdeskhq/softdesk/internal/domain"
)

// Response shapes, one named struct per (resource, operation) pair: list
// endpoints return summary shapes, detail endpoints the richer ones.

// UserSummary is the list shape for users.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserDetail is the detail shape for users.
type UserDetail struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Age             int    `json:"age"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
	CreatedAt       string `json:"created_at"`
}

// ProjectResponse is the list shape for projects.
type ProjectResponse struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_time"`
}

// ProjectDetail adds the contributor and issue listings.
type ProjectDetail struct {
	ProjectResponse
	Contributors []UserSummary   `json:"contributors"`
	Issues       []IssueResponse `json:"issues"`
}

// IssueResponse is the list shape for issues.
type IssueResponse struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Project     string `json:"project"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_time"`
}

// IssueDetail adds the comment listing.
type IssueDetail struct {
	IssueResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse is the single shape for comments; IssueURL points back
// at the owning issue's detail route.
type CommentResponse struct {
	ID          string `json:"uuid"`
	Author      string `json:"author"`
	Issue       string `json:"issue"`
	Description string `json:"description"`
	IssueURL    string `json:"issue_url"`
	CreatedAt   string `json:"created_time"`
}

func userSummary(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID.String(), Username: u.Username}
}

func userDetail(u *domain.User) UserDetail {
	return UserDetail{
		ID:              u.ID.String(),
		Username:        u.Username,
		Age:             u.Age,
		CanBeContacted:  u.CanBeContacted,
		CanDataBeShared: u.CanDataBeShared,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

func projectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Author:      p.AuthorID.String(),
		Title:       p.Title,
		Description: string(p.Description),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func issueResponse(i *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          i.ID.String(),
		Author:      i.AuthorID.String(),
		Project:     i.ProjectID.String(),
		Title:       i.Title,
		Description: i.Description,
		Priority:    string(i.Priority),
		Type:        string(i.Type),
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
}

func commentResponse(c *domain.Comment, projectID domain.ProjectID) CommentResponse {
	return CommentResponse{
		ID:          c.ID.String(),
		Author:      c.AuthorID.String(),
		Issue:       c.IssueID.String(),
		Description: c.Description,
		IssueURL:    "/api/project/" + projectID.String() + "/issue/" + c.IssueID.String(),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}
