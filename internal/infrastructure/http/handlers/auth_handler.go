package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/auth"
)

// AuthHandler handles /api/token/ and /api/token/refresh/.
type AuthHandler struct {
	login   *auth.Login
	refresh *auth.Refresh
	log     zerolog.Logger
}

func NewAuthHandler(login *auth.Login, refresh *auth.Refresh, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{login: login, refresh: refresh, log: log}
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Token exchanges username/password for an access/refresh pair.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.log.Info().Str("username", req.Username).Msg("token issued")
	writeJSON(w, http.StatusOK, tokenResponse{Access: result.AccessToken, Refresh: result.RefreshToken})
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required,max=1024"`
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: req.Refresh})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Access: result.AccessToken})
}
