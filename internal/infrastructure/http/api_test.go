package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/auth"
	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/application/contributors"
	"github.com/softdeskhq/softdesk/internal/application/issues"
	"github.com/softdeskhq/softdesk/internal/application/resolver"
	"github.com/softdeskhq/softdesk/internal/application/users"
	infraauth "github.com/softdeskhq/softdesk/internal/infrastructure/auth"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/handlers"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Verify(password, hash string) bool    { return "h:"+password == hash }

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	hasher := plainHasher{}

	registry := contributors.NewRegistry(store.Contributors(), nil, log)
	engine := authz.NewEngine(registry)
	resolve := resolver.New(store.Projects(), store.Issues(), store.Comments())

	validator := middleware.NewAuthValidator(issuer, store.Users())
	return NewRouter(RouterConfig{
		AuthHandler: handlers.NewAuthHandler(
			auth.NewLogin(store.Users(), hasher, issuer, 900, 3600),
			auth.NewRefresh(store.Users(), issuer, 900),
			log,
		),
		UsersHandler:    handlers.NewUsersHandler(store.Users(), users.NewRegister(store.Users(), hasher), engine, log),
		ProjectsHandler: handlers.NewProjectsHandler(store.Projects(), store.Issues(), store.Users(), registry, engine, resolve, log),
		IssuesHandler:   handlers.NewIssuesHandler(store.Issues(), store.Comments(), issues.NewCreate(store.Issues(), registry), engine, resolve, log),
		CommentsHandler: handlers.NewCommentsHandler(store.Comments(), engine, resolve, log),
		RequireJWT:      validator.Handler,
		OptionalJWT:     validator.OptionalHandler,
		Log:             log,
	})
}

func do(t *testing.T, api http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func signup(t *testing.T, api http.Handler, username string) string {
	t.Helper()
	rec := do(t, api, http.MethodPost, "/api/user/", "", map[string]interface{}{
		"username": username,
		"password": "correct horse",
		"age":      27,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func login(t *testing.T, api http.Handler, username string) string {
	t.Helper()
	rec := do(t, api, http.MethodPost, "/api/token/", "", map[string]string{
		"username": username,
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Access string `json:"access"`
	}
	decode(t, rec, &resp)
	return resp.Access
}

func TestContributorLifecycle(t *testing.T) {
	api := newTestAPI(t)

	signup(t, api, "alice")
	bobID := signup(t, api, "bob")
	signup(t, api, "carol")
	alice := login(t, api, "alice")
	bob := login(t, api, "bob")
	carol := login(t, api, "carol")

	// Alice creates a project.
	rec := do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "BACKEND",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: status %d: %s", rec.Code, rec.Body.String())
	}
	var project struct {
		ID string `json:"id"`
	}
	decode(t, rec, &project)
	projectPath := "/api/project/" + project.ID

	// Any authenticated user can list, only contributors see the detail.
	if rec := do(t, api, http.MethodGet, "/api/project/", carol, nil); rec.Code != http.StatusOK {
		t.Errorf("carol list: status %d", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, projectPath+"/", carol, nil); rec.Code != http.StatusForbidden {
		t.Errorf("carol detail: status %d, want 403", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, projectPath+"/", alice, nil); rec.Code != http.StatusOK {
		t.Errorf("alice detail: status %d", rec.Code)
	}

	// Only the author manages membership.
	if rec := do(t, api, http.MethodPost, projectPath+"/add_contributor", bob, map[string]string{"user": bobID}); rec.Code != http.StatusForbidden {
		t.Errorf("bob self-add: status %d, want 403", rec.Code)
	}
	if rec := do(t, api, http.MethodPost, projectPath+"/add_contributor", alice, map[string]string{"user": bobID}); rec.Code != http.StatusCreated {
		t.Fatalf("add bob: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, api, http.MethodPost, projectPath+"/add_contributor", alice, map[string]string{"user": bobID}); rec.Code != http.StatusBadRequest {
		t.Errorf("add bob twice: status %d, want 400", rec.Code)
	}

	// Bob, now a contributor, opens an issue.
	rec = do(t, api, http.MethodPost, projectPath+"/issue/", bob, map[string]string{
		"title":    "crash on start",
		"priority": "HIGH",
		"type":     "BUG",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("bob creates issue: status %d: %s", rec.Code, rec.Body.String())
	}
	var issue struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, rec, &issue)
	if issue.Status != "TODO" {
		t.Errorf("issue status: got %q, want TODO", issue.Status)
	}
	issuePath := projectPath + "/issue/" + issue.ID

	if rec := do(t, api, http.MethodGet, projectPath+"/issue/", carol, nil); rec.Code != http.StatusForbidden {
		t.Errorf("carol lists issues: status %d, want 403", rec.Code)
	}

	// The project author reads but cannot rewrite someone else's issue.
	if rec := do(t, api, http.MethodGet, issuePath+"/", alice, nil); rec.Code != http.StatusOK {
		t.Errorf("alice reads issue: status %d", rec.Code)
	}
	if rec := do(t, api, http.MethodPatch, issuePath+"/", alice, map[string]string{"status": "FINISHED"}); rec.Code != http.StatusForbidden {
		t.Errorf("alice patches bob's issue: status %d, want 403", rec.Code)
	}

	// Membership revocation does not touch authorship.
	if rec := do(t, api, http.MethodPost, projectPath+"/remove_contributor", alice, map[string]string{"user": bobID}); rec.Code != http.StatusOK {
		t.Fatalf("remove bob: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, api, http.MethodPost, projectPath+"/remove_contributor", alice, map[string]string{"user": bobID}); rec.Code != http.StatusBadRequest {
		t.Errorf("remove bob twice: status %d, want 400", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, projectPath+"/issue/", bob, nil); rec.Code != http.StatusForbidden {
		t.Errorf("bob lists after removal: status %d, want 403", rec.Code)
	}
	if rec := do(t, api, http.MethodPatch, issuePath+"/", bob, map[string]string{"status": "IN_PROGRESS"}); rec.Code != http.StatusOK {
		t.Errorf("bob patches own issue after removal: status %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestCommentLifecycle(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")
	alice := login(t, api, "alice")

	rec := do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "BACKEND",
	})
	var project struct {
		ID string `json:"id"`
	}
	decode(t, rec, &project)

	rec = do(t, api, http.MethodPost, "/api/project/"+project.ID+"/issue/", alice, map[string]string{
		"title":    "crash on start",
		"priority": "HIGH",
		"type":     "BUG",
	})
	var issue struct {
		ID string `json:"id"`
	}
	decode(t, rec, &issue)
	issuePath := "/api/project/" + project.ID + "/issue/" + issue.ID

	rec = do(t, api, http.MethodPost, issuePath+"/comment/", alice, map[string]string{
		"description": "reproduced on linux",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d: %s", rec.Code, rec.Body.String())
	}
	var comment struct {
		ID       string `json:"uuid"`
		IssueURL string `json:"issue_url"`
	}
	decode(t, rec, &comment)
	if want := issuePath; comment.IssueURL != want {
		t.Errorf("issue_url: got %q, want %q", comment.IssueURL, want)
	}

	commentPath := issuePath + "/comment/" + comment.ID
	if rec := do(t, api, http.MethodGet, commentPath+"/", alice, nil); rec.Code != http.StatusOK {
		t.Errorf("retrieve comment: status %d", rec.Code)
	}

	rec = do(t, api, http.MethodGet, issuePath+"/", alice, nil)
	var detail struct {
		Comments []struct {
			ID string `json:"uuid"`
		} `json:"comments"`
	}
	decode(t, rec, &detail)
	if len(detail.Comments) != 1 || detail.Comments[0].ID != comment.ID {
		t.Errorf("issue detail comments: got %+v", detail.Comments)
	}

	if rec := do(t, api, http.MethodDelete, commentPath+"/", alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete comment: status %d", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, commentPath+"/", alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("retrieve deleted comment: status %d, want 404", rec.Code)
	}
}

func TestAuthenticationBoundary(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")
	alice := login(t, api, "alice")

	// Missing and garbage credentials.
	if rec := do(t, api, http.MethodGet, "/api/project/", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, "/api/project/", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", rec.Code)
	}

	// Signup inside a session is refused.
	rec := do(t, api, http.MethodPost, "/api/user/", alice, map[string]interface{}{
		"username": "eve",
		"password": "correct horse",
		"age":      30,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("authenticated signup: status %d, want 403", rec.Code)
	}

	// OPTIONS is open as a metadata probe.
	if rec := do(t, api, http.MethodOptions, "/api/project/", "", nil); rec.Code != http.StatusOK {
		t.Errorf("options: status %d, want 200", rec.Code)
	}
}

func TestNotFoundBeforePermission(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")
	signup(t, api, "carol")
	alice := login(t, api, "alice")
	carol := login(t, api, "carol")

	rec := do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "BACKEND",
	})
	var project struct {
		ID string `json:"id"`
	}
	decode(t, rec, &project)

	// A missing project is a 404 for everyone, member or not.
	const absent = "00000000-0000-0000-0000-000000000001"
	if rec := do(t, api, http.MethodGet, "/api/project/"+absent+"/", carol, nil); rec.Code != http.StatusNotFound {
		t.Errorf("absent project: status %d, want 404", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, "/api/project/"+absent+"/issue/", carol, nil); rec.Code != http.StatusNotFound {
		t.Errorf("absent project issue list: status %d, want 404", rec.Code)
	}

	// A malformed id never reaches the store.
	if rec := do(t, api, http.MethodGet, "/api/project/not-a-uuid/", alice, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status %d, want 400", rec.Code)
	}
}

func TestUserSelfService(t *testing.T) {
	api := newTestAPI(t)
	aliceID := signup(t, api, "alice")
	bobID := signup(t, api, "bob")
	alice := login(t, api, "alice")

	if rec := do(t, api, http.MethodGet, "/api/user/", alice, nil); rec.Code != http.StatusOK {
		t.Errorf("list users: status %d", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, "/api/user/"+aliceID, alice, nil); rec.Code != http.StatusOK {
		t.Errorf("read own record: status %d", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, "/api/user/"+bobID, alice, nil); rec.Code != http.StatusForbidden {
		t.Errorf("read other record: status %d, want 403", rec.Code)
	}

	rec := do(t, api, http.MethodPatch, "/api/user/"+aliceID, alice, map[string]bool{"can_be_contacted": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch own record: status %d: %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		CanBeContacted bool `json:"can_be_contacted"`
	}
	decode(t, rec, &detail)
	if !detail.CanBeContacted {
		t.Error("patch did not apply")
	}

	if rec := do(t, api, http.MethodDelete, "/api/user/"+bobID, alice, nil); rec.Code != http.StatusForbidden {
		t.Errorf("delete other record: status %d, want 403", rec.Code)
	}
	if rec := do(t, api, http.MethodDelete, "/api/user/"+aliceID, alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete own record: status %d, want 204", rec.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"underage", map[string]interface{}{"username": "kid", "password": "longenough", "age": 14}},
		{"short password", map[string]interface{}{"username": "rosa", "password": "short", "age": 30}},
		{"missing username", map[string]interface{}{"password": "longenough", "age": 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, api, http.MethodPost, "/api/user/", "", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}

	signup(t, api, "rosa")
	rec := do(t, api, http.MethodPost, "/api/user/", "", map[string]interface{}{
		"username": "rosa", "password": "correct horse", "age": 30,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate username: status %d, want 400", rec.Code)
	}
}

func TestTokenRefreshFlow(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")

	rec := do(t, api, http.MethodPost, "/api/token/", "", map[string]string{
		"username": "alice", "password": "correct horse",
	})
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decode(t, rec, &tokens)
	if tokens.Refresh == "" {
		t.Fatal("no refresh token issued")
	}

	rec = do(t, api, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": tokens.Refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status %d: %s", rec.Code, rec.Body.String())
	}
	var refreshed struct {
		Access string `json:"access"`
	}
	decode(t, rec, &refreshed)
	if refreshed.Access == "" {
		t.Error("no access token from refresh")
	}

	// An access token is not accepted on the refresh route.
	rec = do(t, api, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": tokens.Access})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("access-as-refresh: status %d, want 401", rec.Code)
	}

	rec = do(t, api, http.MethodPost, "/api/token/", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", rec.Code)
	}
}

func TestUsernameUniqueOnRename(t *testing.T) {
	api := newTestAPI(t)

	aliceID := signup(t, api, "alice")
	signup(t, api, "bob")
	alice := login(t, api, "alice")

	// A rename onto an existing username is a validation failure.
	rec := do(t, api, http.MethodPatch, "/api/user/"+aliceID, alice, map[string]interface{}{"username": "bob"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("patch to taken username: status %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, api, http.MethodPut, "/api/user/"+aliceID, alice, map[string]interface{}{"username": "bob", "age": 27})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("put to taken username: status %d: %s", rec.Code, rec.Body.String())
	}

	// Re-submitting the current name is not a conflict.
	if rec := do(t, api, http.MethodPatch, "/api/user/"+aliceID, alice, map[string]interface{}{"username": "alice"}); rec.Code != http.StatusOK {
		t.Errorf("patch keeping own username: status %d: %s", rec.Code, rec.Body.String())
	}

	// A fresh name goes through and both accounts keep working.
	if rec := do(t, api, http.MethodPatch, "/api/user/"+aliceID, alice, map[string]interface{}{"username": "alicia"}); rec.Code != http.StatusOK {
		t.Fatalf("rename to fresh username: status %d: %s", rec.Code, rec.Body.String())
	}
	login(t, api, "alicia")
	login(t, api, "bob")
}

func TestProjectDescriptionIsCategoryEnum(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")
	alice := login(t, api, "alice")

	// Free text is rejected; description is the fixed category.
	rec := do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "a backend for tracking issues",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("free-text description: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "IOS",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: status %d: %s", rec.Code, rec.Body.String())
	}
	var project struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	}
	decode(t, rec, &project)
	if project.Description != "IOS" {
		t.Errorf("description: got %q, want IOS", project.Description)
	}

	path := "/api/project/" + project.ID
	if rec := do(t, api, http.MethodPatch, path, alice, map[string]string{"description": "mobile app"}); rec.Code != http.StatusBadRequest {
		t.Errorf("patch to free text: status %d, want 400", rec.Code)
	}
	if rec := do(t, api, http.MethodPatch, path, alice, map[string]string{"description": "ANDROID"}); rec.Code != http.StatusOK {
		t.Errorf("patch to ANDROID: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIssueEnumValidation(t *testing.T) {
	api := newTestAPI(t)
	signup(t, api, "alice")
	alice := login(t, api, "alice")

	rec := do(t, api, http.MethodPost, "/api/project/", alice, map[string]string{
		"title":       "tracker",
		"description": "BACKEND",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: status %d: %s", rec.Code, rec.Body.String())
	}
	var project struct {
		ID string `json:"id"`
	}
	decode(t, rec, &project)
	issuesPath := "/api/project/" + project.ID + "/issue/"

	rec = do(t, api, http.MethodPost, issuesPath, alice, map[string]string{
		"title":    "crash on start",
		"priority": "URGENT",
		"type":     "BUG",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown priority: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, api, http.MethodPost, issuesPath, alice, map[string]string{
		"title":    "crash on start",
		"priority": "HIGH",
		"type":     "BUG",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create issue: status %d: %s", rec.Code, rec.Body.String())
	}
	var issue struct {
		ID string `json:"id"`
	}
	decode(t, rec, &issue)
	issuePath := issuesPath + issue.ID

	if rec := do(t, api, http.MethodPatch, issuePath, alice, map[string]string{"status": "DONE"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status %d, want 400", rec.Code)
	}
	if rec := do(t, api, http.MethodPatch, issuePath, alice, map[string]string{"status": "FINISHED"}); rec.Code != http.StatusOK {
		t.Errorf("patch status FINISHED: status %d: %s", rec.Code, rec.Body.String())
	}
}
