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
	"github.com/softdeskhq/softdesk/internal/application/contributors"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/application/resolver"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

// ProjectsHandler handles /api/project/* including the add_contributor and
// remove_contributor actions.
type ProjectsHandler struct {
	projects ports.ProjectRepository
	issues   ports.IssueRepository
	users    ports.UserRepository
	registry *contributors.Registry
	engine   *authz.Engine
	resolve  *resolver.Resolver
	log      zerolog.Logger
}

func NewProjectsHandler(projects ports.ProjectRepository, issues ports.IssueRepository, users ports.UserRepository, registry *contributors.Registry, engine *authz.Engine, resolve *resolver.Resolver, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		issues:   issues,
		users:    users,
		registry: registry,
		engine:   engine,
		resolve:  resolve,
		log:      log,
	}
}

// List returns the summary shape; any authenticated actor sees all
// projects, membership only gates the detail view.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	if !permitCollection(w, r, h.engine, authz.ResourceProject, rc) {
		return
	}
	limit, offset := listParams(r)
	list, err := h.projects.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, projectResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": items})
}

type createProjectRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// Create persists a project with the actor as author. The author's
// contributor row is written in the same unit of work by the store.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	if !permitCollection(w, r, h.engine, authz.ResourceProject, rc) {
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	description := domain.ProjectDescription(req.Description)
	if !description.Valid() {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "description must be one of BACKEND, FRONTEND, IOS, ANDROID")
		return
	}
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		AuthorID:    rc.Actor.ID,
		Title:       req.Title,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := h.projects.Create(r.Context(), project); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("project_id", project.ID.String()).Str("author", project.AuthorID.String()).Msg("project created")
	writeJSON(w, http.StatusCreated, projectResponse(project))
}

// Retrieve returns the detail shape with contributors and issues embedded.
func (h *ProjectsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	project, rc, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceProject, authz.ProjectTarget(project), rc) {
		return
	}
	members, err := h.registry.ListMembers(r.Context(), project.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	contribs := make([]UserSummary, 0, len(members))
	for _, m := range members {
		u, err := h.users.GetByID(r.Context(), m.UserID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
			return
		}
		if u != nil {
			contribs = append(contribs, userSummary(u))
		}
	}
	issueList, err := h.issues.ListByProject(r.Context(), project.ID, maxListLimit, 0)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	issueItems := make([]IssueResponse, 0, len(issueList))
	for _, i := range issueList {
		issueItems = append(issueItems, issueResponse(i))
	}
	writeJSON(w, http.StatusOK, ProjectDetail{
		ProjectResponse: projectResponse(project),
		Contributors:    contribs,
		Issues:          issueItems,
	})
}

// Update replaces title and description; the author never changes.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	project, rc, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceProject, authz.ProjectTarget(project), rc) {
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	description := domain.ProjectDescription(req.Description)
	if !description.Valid() {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "description must be one of BACKEND, FRONTEND, IOS, ANDROID")
		return
	}
	project.Title = req.Title
	project.Description = description
	if err := h.projects.Update(r.Context(), project); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projectResponse(project))
}

type patchProjectRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

// PartialUpdate changes only the fields present in the body.
func (h *ProjectsHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	project, rc, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceProject, authz.ProjectTarget(project), rc) {
		return
	}
	var req patchProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		description := domain.ProjectDescription(*req.Description)
		if !description.Valid() {
			writeErr(w, http.StatusBadRequest, ErrCodeValidation, "description must be one of BACKEND, FRONTEND, IOS, ANDROID")
			return
		}
		project.Description = description
	}
	if err := h.projects.Update(r.Context(), project); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projectResponse(project))
}

// Destroy deletes the project; issues, comments and contributor rows
// cascade away in the store.
func (h *ProjectsHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	project, rc, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceProject, authz.ProjectTarget(project), rc) {
		return
	}
	if err := h.projects.Delete(r.Context(), project.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("project_id", project.ID.String()).Msg("project deleted")
	w.WriteHeader(http.StatusNoContent)
}

type contributorRequest struct {
	User string `json:"user" validate:"required,uuid"`
}

// AddContributor grants membership; author only. A duplicate add is the
// soft AlreadyContributor outcome, reported as 400 like a fresh-add
// validation failure.
func (h *ProjectsHandler) AddContributor(w http.ResponseWriter, r *http.Request) {
	project, user, ok := h.loadContributorTarget(w, r, authz.ActionAddContributor)
	if !ok {
		return
	}
	result, err := h.registry.Add(r.Context(), project, user.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	if result == contributors.AlreadyContributor {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "user is already a contributor"})
		return
	}
	h.log.Info().Str("project_id", project.ID.String()).Str("user_id", user.ID.String()).Msg("contributor added")
	writeJSON(w, http.StatusCreated, map[string]string{"status": "user added as contributor"})
}

// RemoveContributor revokes membership; author only. Removing a non-member
// is the soft NotContributor outcome.
func (h *ProjectsHandler) RemoveContributor(w http.ResponseWriter, r *http.Request) {
	project, user, ok := h.loadContributorTarget(w, r, authz.ActionRemoveContributor)
	if !ok {
		return
	}
	result, err := h.registry.Remove(r.Context(), project, user.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	if result == contributors.NotContributor {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "user is not a contributor"})
		return
	}
	h.log.Info().Str("project_id", project.ID.String()).Str("user_id", user.ID.String()).Msg("contributor removed")
	writeJSON(w, http.StatusOK, map[string]string{"status": "user removed from contributors"})
}

func (h *ProjectsHandler) loadProject(w http.ResponseWriter, r *http.Request) (*domain.Project, authz.Context, bool) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid project id")
		return nil, rc, false
	}
	project, err := h.resolve.Project(r.Context(), domain.NewProjectID(id))
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		} else {
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return nil, rc, false
	}
	rc.Project = project
	return project, rc, true
}

func (h *ProjectsHandler) loadContributorTarget(w http.ResponseWriter, r *http.Request, act authz.Action) (*domain.Project, *domain.User, bool) {
	project, rc, ok := h.loadProject(w, r)
	if !ok {
		return nil, nil, false
	}
	if !permitObjectAction(w, r, h.engine, authz.ResourceProject, act, authz.ProjectTarget(project), rc) {
		return nil, nil, false
	}
	var req contributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return nil, nil, false
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, nil, false
	}
	userID, _ := uuid.Parse(req.User)
	user, err := h.users.GetByID(r.Context(), domain.NewUserID(userID))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return nil, nil, false
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return nil, nil, false
	}
	return project, user, true
}
