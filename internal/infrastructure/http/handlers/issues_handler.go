package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/application/issues"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/application/resolver"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

// IssuesHandler handles /api/project/{projectID}/issue/*. The owning
// project is resolved before any permission check: a missing project is a
// 404, never a 403.
type IssuesHandler struct {
	issueRepo ports.IssueRepository
	comments  ports.CommentRepository
	create    *issues.Create
	engine    *authz.Engine
	resolve   *resolver.Resolver
	log       zerolog.Logger
}

func NewIssuesHandler(issueRepo ports.IssueRepository, comments ports.CommentRepository, create *issues.Create, engine *authz.Engine, resolve *resolver.Resolver, log zerolog.Logger) *IssuesHandler {
	return &IssuesHandler{
		issueRepo: issueRepo,
		comments:  comments,
		create:    create,
		engine:    engine,
		resolve:   resolve,
		log:       log,
	}
}

// List returns the project's issues, for contributors and the author.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.projectContext(w, r)
	if !ok {
		return
	}
	if !permitCollection(w, r, h.engine, authz.ResourceIssue, rc) {
		return
	}
	limit, offset := listParams(r)
	list, err := h.issueRepo.ListByProject(r.Context(), rc.Project.ID, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]IssueResponse, 0, len(list))
	for _, i := range list {
		items = append(items, issueResponse(i))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"issues": items})
}

type createIssueRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2048"`
	Priority    string `json:"priority" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Status      string `json:"status"`
	Author      string `json:"author" validate:"omitempty,uuid"`
}

// issueEnums converts and checks the enumerated fields. An empty status
// means the caller left it to the TODO default.
func (req *createIssueRequest) issueEnums(w http.ResponseWriter) (domain.IssuePriority, domain.IssueType, domain.IssueStatus, bool) {
	priority := domain.IssuePriority(req.Priority)
	issueType := domain.IssueType(req.Type)
	status := domain.IssueStatus(req.Status)
	if !priority.Valid() || !issueType.Valid() || (status != "" && !status.Valid()) {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "priority, type and status must use the enumerated values")
		return "", "", "", false
	}
	return priority, issueType, status, true
}

// Create persists an issue on the path project. An explicit author other
// than the actor must be a contributor; that violation is a validation
// failure, not a permission one.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.projectContext(w, r)
	if !ok {
		return
	}
	if !permitCollection(w, r, h.engine, authz.ResourceIssue, rc) {
		return
	}
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	priority, issueType, status, ok := req.issueEnums(w)
	if !ok {
		return
	}
	var authorID domain.UserID
	if req.Author != "" {
		id, _ := uuid.Parse(req.Author)
		authorID = domain.NewUserID(id)
	}
	result, err := h.create.Execute(r.Context(), issues.CreateInput{
		Project:     rc.Project,
		Actor:       rc.Actor,
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Type:        issueType,
		Status:      status,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.log.Info().Str("issue_id", result.Issue.ID.String()).Str("project_id", rc.Project.ID.String()).Msg("issue created")
	writeJSON(w, http.StatusCreated, issueResponse(result.Issue))
}

// Retrieve returns the detail shape with comments embedded.
func (h *IssuesHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.loadIssue(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceIssue, authz.IssueTarget(issue), rc) {
		return
	}
	commentList, err := h.comments.ListByIssue(r.Context(), issue.ID, maxListLimit, 0)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]CommentResponse, 0, len(commentList))
	for _, c := range commentList {
		items = append(items, commentResponse(c, issue.ProjectID))
	}
	writeJSON(w, http.StatusOK, IssueDetail{IssueResponse: issueResponse(issue), Comments: items})
}

// Update replaces the mutable fields; only the issue's own author may,
// the project author included only when the two coincide.
func (h *IssuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.loadIssue(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceIssue, authz.IssueTarget(issue), rc) {
		return
	}
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	priority, issueType, status, ok := req.issueEnums(w)
	if !ok {
		return
	}
	issue.Title = req.Title
	issue.Description = req.Description
	issue.Priority = priority
	issue.Type = issueType
	if status != "" {
		issue.Status = status
	}
	if err := h.issueRepo.Update(r.Context(), issue); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, issueResponse(issue))
}

type patchIssueRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
	Priority    *string `json:"priority"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
}

// PartialUpdate changes only the fields present in the body. Status moves
// freely between the enumerated values; there is no transition ordering.
func (h *IssuesHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.loadIssue(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceIssue, authz.IssueTarget(issue), rc) {
		return
	}
	var req patchIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Priority != nil {
		priority := domain.IssuePriority(*req.Priority)
		if !priority.Valid() {
			writeErr(w, http.StatusBadRequest, ErrCodeValidation, "priority must be LOW, MEDIUM or HIGH")
			return
		}
		issue.Priority = priority
	}
	if req.Type != nil {
		issueType := domain.IssueType(*req.Type)
		if !issueType.Valid() {
			writeErr(w, http.StatusBadRequest, ErrCodeValidation, "type must be BUG, FEATURE or TASK")
			return
		}
		issue.Type = issueType
	}
	if req.Status != nil {
		status := domain.IssueStatus(*req.Status)
		if !status.Valid() {
			writeErr(w, http.StatusBadRequest, ErrCodeValidation, "status must be TODO, IN_PROGRESS or FINISHED")
			return
		}
		issue.Status = status
	}
	if err := h.issueRepo.Update(r.Context(), issue); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, issueResponse(issue))
}

// Destroy deletes the issue and its comments.
func (h *IssuesHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.loadIssue(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceIssue, authz.IssueTarget(issue), rc) {
		return
	}
	if err := h.issueRepo.Delete(r.Context(), issue.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("issue_id", issue.ID.String()).Msg("issue deleted")
	w.WriteHeader(http.StatusNoContent)
}

// projectContext resolves the path project into the permission context.
func (h *IssuesHandler) projectContext(w http.ResponseWriter, r *http.Request) (authz.Context, bool) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid project id")
		return rc, false
	}
	project, err := h.resolve.Project(r.Context(), domain.NewProjectID(id))
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		} else {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return rc, false
	}
	rc.Project = project
	return rc, true
}

func (h *IssuesHandler) loadIssue(w http.ResponseWriter, r *http.Request) (*domain.Issue, authz.Context, bool) {
	rc, ok := h.projectContext(w, r)
	if !ok {
		return nil, rc, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "issueID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid issue id")
		return nil, rc, false
	}
	issue, err := h.resolve.Issue(r.Context(), rc.Project.ID, domain.NewIssueID(id))
	if err != nil {
		if errors.Is(err, domerrors.ErrIssueNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, "issue not found")
		} else {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return nil, rc, false
	}
	return issue, rc, true
}
