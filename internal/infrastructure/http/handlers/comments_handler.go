package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/application/resolver"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

// CommentsHandler handles the deepest level of the hierarchy,
// /api/project/{projectID}/issue/{issueID}/comment/*. The permission
// context walks comment -> issue -> project so the decision always runs
// against the true owning project.
type CommentsHandler struct {
	commentRepo ports.CommentRepository
	engine      *authz.Engine
	resolve     *resolver.Resolver
	log         zerolog.Logger
}

func NewCommentsHandler(commentRepo ports.CommentRepository, engine *authz.Engine, resolve *resolver.Resolver, log zerolog.Logger) *CommentsHandler {
	return &CommentsHandler{commentRepo: commentRepo, engine: engine, resolve: resolve, log: log}
}

// List returns the issue's comments, for project contributors and author.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.issueContext(w, r)
	if !ok {
		return
	}
	if !permitCollection(w, r, h.engine, authz.ResourceComment, rc) {
		return
	}
	limit, offset := listParams(r)
	list, err := h.commentRepo.ListByIssue(r.Context(), issue.ID, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]CommentResponse, 0, len(list))
	for _, c := range list {
		items = append(items, commentResponse(c, rc.Project.ID))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": items})
}

type createCommentRequest struct {
	Description string `json:"description" validate:"required,max=2048"`
}

// Create persists a comment authored by the actor on the path issue. The
// author and owning issue always come from the request context, never the
// body.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	issue, rc, ok := h.issueContext(w, r)
	if !ok {
		return
	}
	if !permitCollection(w, r, h.engine, authz.ResourceComment, rc) {
		return
	}
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	comment := &domain.Comment{
		ID:          domain.NewCommentID(uuid.New()),
		AuthorID:    rc.Actor.ID,
		IssueID:     issue.ID,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := h.commentRepo.Create(r.Context(), comment); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("comment_id", comment.ID.String()).Str("issue_id", issue.ID.String()).Msg("comment created")
	writeJSON(w, http.StatusCreated, commentResponse(comment, rc.Project.ID))
}

// Retrieve returns a single comment.
func (h *CommentsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	comment, rc, ok := h.loadComment(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceComment, authz.CommentTarget(comment), rc) {
		return
	}
	writeJSON(w, http.StatusOK, commentResponse(comment, rc.Project.ID))
}

// Update replaces the comment body; comment author only.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

// PartialUpdate is Update without requiring the full shape; the comment
// has a single mutable field either way.
func (h *CommentsHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

func (h *CommentsHandler) update(w http.ResponseWriter, r *http.Request) {
	comment, rc, ok := h.loadComment(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceComment, authz.CommentTarget(comment), rc) {
		return
	}
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	comment.Description = req.Description
	if err := h.commentRepo.Update(r.Context(), comment); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, commentResponse(comment, rc.Project.ID))
}

// Destroy deletes the comment; comment author only.
func (h *CommentsHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	comment, rc, ok := h.loadComment(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceComment, authz.CommentTarget(comment), rc) {
		return
	}
	if err := h.commentRepo.Delete(r.Context(), comment.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("comment_id", comment.ID.String()).Msg("comment deleted")
	w.WriteHeader(http.StatusNoContent)
}

// issueContext resolves the full project/issue path scope.
func (h *CommentsHandler) issueContext(w http.ResponseWriter, r *http.Request) (*domain.Issue, authz.Context, bool) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid project id")
		return nil, rc, false
	}
	project, err := h.resolve.Project(r.Context(), domain.NewProjectID(projectID))
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		} else {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return nil, rc, false
	}
	rc.Project = project
	issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid issue id")
		return nil, rc, false
	}
	issue, err := h.resolve.Issue(r.Context(), project.ID, domain.NewIssueID(issueID))
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

func (h *CommentsHandler) loadComment(w http.ResponseWriter, r *http.Request) (*domain.Comment, authz.Context, bool) {
	issue, rc, ok := h.issueContext(w, r)
	if !ok {
		return nil, rc, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid comment id")
		return nil, rc, false
	}
	comment, err := h.resolve.Comment(r.Context(), issue.ID, domain.NewCommentID(id))
	if err != nil {
		if errors.Is(err, domerrors.ErrCommentNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, "comment not found")
		} else {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return nil, rc, false
	}
	return comment, rc, true
}
