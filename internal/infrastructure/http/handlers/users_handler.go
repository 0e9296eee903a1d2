package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/application/users"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

// UsersHandler handles /api/user/*. Signup is open to anonymous requests;
// everything else goes through the self-service policy.
type UsersHandler struct {
	userRepo ports.UserRepository
	register *users.Register
	engine   *authz.Engine
	log      zerolog.Logger
}

func NewUsersHandler(userRepo ports.UserRepository, register *users.Register, engine *authz.Engine, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{userRepo: userRepo, register: register, engine: engine, log: log}
}

type createUserRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	Age             int    `json:"age" validate:"required,gte=15"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
}

// Create handles signup. Denied for authenticated actors: accounts are
// created from outside a session.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	dec, err := h.engine.CheckCollection(r.Context(), authz.ResourceUser, authz.ActionCreate, rc)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	middleware.RecordAuthzDecision(authz.ResourceUser.String(), authz.ActionCreate.String(), dec.String())
	if dec != authz.Allow {
		writeErr(w, http.StatusForbidden, ErrCodeForbidden, "signup is for anonymous users")
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	result, err := h.register.Execute(r.Context(), users.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		Age:             req.Age,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.log.Info().Str("user_id", result.User.ID.String()).Msg("user registered")
	writeJSON(w, http.StatusCreated, userDetail(result.User))
}

// List returns user summaries for authenticated actors.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	if !permitCollection(w, r, h.engine, authz.ResourceUser, rc) {
		return
	}
	limit, offset := listParams(r)
	list, err := h.userRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]UserSummary, 0, len(list))
	for _, u := range list {
		items = append(items, userSummary(u))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": items})
}

// Retrieve returns the detail shape, own record only.
func (h *UsersHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	target, rc, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceUser, authz.UserTarget(target), rc) {
		return
	}
	writeJSON(w, http.StatusOK, userDetail(target))
}

type updateUserRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Age             int    `json:"age" validate:"required,gte=15"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
}

// Update replaces the mutable fields of the actor's own record.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	target, rc, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceUser, authz.UserTarget(target), rc) {
		return
	}
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if req.Username != target.Username {
		if !h.claimUsername(w, r.Context(), req.Username, target.ID) {
			return
		}
	}
	target.Username = req.Username
	target.Age = req.Age
	target.CanBeContacted = req.CanBeContacted
	target.CanDataBeShared = req.CanDataBeShared
	target.UpdatedAt = time.Now()
	if err := h.userRepo.Update(r.Context(), target); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userDetail(target))
}

type patchUserRequest struct {
	Username        *string `json:"username" validate:"omitempty,max=150"`
	Age             *int    `json:"age" validate:"omitempty,gte=15"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
}

// PartialUpdate changes only the fields present in the body.
func (h *UsersHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	target, rc, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceUser, authz.UserTarget(target), rc) {
		return
	}
	var req patchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if req.Username != nil && *req.Username != target.Username {
		if !h.claimUsername(w, r.Context(), *req.Username, target.ID) {
			return
		}
	}
	if req.Username != nil {
		target.Username = *req.Username
	}
	if req.Age != nil {
		target.Age = *req.Age
	}
	if req.CanBeContacted != nil {
		target.CanBeContacted = *req.CanBeContacted
	}
	if req.CanDataBeShared != nil {
		target.CanDataBeShared = *req.CanDataBeShared
	}
	target.UpdatedAt = time.Now()
	if err := h.userRepo.Update(r.Context(), target); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userDetail(target))
}

// Destroy deletes the actor's own record; owned projects and authored
// issues/comments cascade away with it.
func (h *UsersHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	target, rc, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !permitObject(w, r, h.engine, authz.ResourceUser, authz.UserTarget(target), rc) {
		return
	}
	if err := h.userRepo.Delete(r.Context(), target.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	h.log.Info().Str("user_id", target.ID.String()).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}

// claimUsername enforces username uniqueness on renames. The store's
// unique constraint still backstops the race between check and write.
func (h *UsersHandler) claimUsername(w http.ResponseWriter, ctx context.Context, username string, selfID domain.UserID) bool {
	existing, err := h.userRepo.GetByUsername(ctx, username)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return false
	}
	if existing != nil && existing.ID != selfID {
		writeDomainErr(w, domerrors.ErrUsernameTaken)
		return false
	}
	return true
}

func (h *UsersHandler) loadTarget(w http.ResponseWriter, r *http.Request) (*domain.User, authz.Context, bool) {
	rc := authz.Context{Actor: middleware.ActorFromContext(r.Context())}
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid user id")
		return nil, rc, false
	}
	target, err := h.userRepo.GetByID(r.Context(), domain.NewUserID(id))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return nil, rc, false
	}
	if target == nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return nil, rc, false
	}
	return target, rc, true
}
