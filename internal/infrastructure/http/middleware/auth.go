package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
)

// AuthValidator resolves the Bearer token to an actor and sets it in the
// request context (see ActorFromContext). Handler rejects requests without
// a valid token; OptionalHandler lets them through anonymous, for routes
// like signup where the policy itself rules on authentication.
type AuthValidator struct {
	issuer ports.TokenIssuer
	users  ports.UserRepository
}

func NewAuthValidator(issuer ports.TokenIssuer, users ports.UserRepository) *AuthValidator {
	return &AuthValidator{issuer: issuer, users: users}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.resolve(r)
		if !ok {
			writeAuthErr(w, "invalid token")
			return
		}
		if actor == nil {
			writeAuthErr(w, "missing or invalid authorization")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (m *AuthValidator) OptionalHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.resolve(r)
		if !ok {
			writeAuthErr(w, "invalid token")
			return
		}
		if actor != nil {
			r = r.WithContext(WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// resolve returns (nil, true) when no credentials were presented and
// (nil, false) when credentials were presented but are invalid.
func (m *AuthValidator) resolve(r *http.Request) (*domain.User, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return nil, true
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")
	userIDStr, err := m.issuer.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, false
	}
	user, err := m.users.GetByID(r.Context(), domain.NewUserID(userID))
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

func writeAuthErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
