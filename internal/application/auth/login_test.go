package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	infraauth "github.com/softdeskhq/softdesk/internal/infrastructure/auth"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/memory"
)

type hasherFake struct{}

func (hasherFake) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (hasherFake) Verify(password, hash string) bool    { return "hashed:"+password == hash }

func seedUser(t *testing.T, store *memory.Store) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Username:     "rosa",
		PasswordHash: "hashed:correct horse",
		Age:          27,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	store := memory.New()
	user := seedUser(t, store)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	uc := NewLogin(store.Users(), hasherFake{}, issuer, 900, 604800)

	res, err := uc.Execute(context.Background(), LoginInput{Username: "rosa", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	userID, err := issuer.ValidateAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if userID != user.ID.String() {
		t.Errorf("subject: got %q, want %q", userID, user.ID.String())
	}
}

func TestLoginBadCredentials(t *testing.T) {
	store := memory.New()
	seedUser(t, store)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	uc := NewLogin(store.Users(), hasherFake{}, issuer, 900, 604800)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "rosa", "wrong"},
		{"unknown user", "nobody", "correct horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), LoginInput{Username: tc.username, Password: tc.password})
			if !errors.Is(err, domerrors.ErrInvalidCredentials) {
				t.Errorf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	store := memory.New()
	user := seedUser(t, store)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	uc := NewRefresh(store.Users(), issuer, 900)

	refresh, err := issuer.IssueRefreshToken(user.ID.String(), 3600)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	res, err := uc.Execute(context.Background(), RefreshInput{RefreshToken: refresh})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	userID, err := issuer.ValidateAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if userID != user.ID.String() {
		t.Errorf("subject: got %q, want %q", userID, user.ID.String())
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := memory.New()
	user := seedUser(t, store)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	uc := NewRefresh(store.Users(), issuer, 900)

	access, err := issuer.IssueAccessToken(user.ID.String(), 900)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	_, err = uc.Execute(context.Background(), RefreshInput{RefreshToken: access})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	store := memory.New()
	user := seedUser(t, store)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "softdesk")
	uc := NewRefresh(store.Users(), issuer, 900)

	refresh, _ := issuer.IssueRefreshToken(user.ID.String(), 3600)
	if err := store.Users().Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, err := uc.Execute(context.Background(), RefreshInput{RefreshToken: refresh})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}
