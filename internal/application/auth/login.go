package auth

import (
	"context"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// Login exchanges credentials for an access/refresh token pair. A missing
// user and a wrong password report the same error.
type Login struct {
	users         ports.UserRepository
	hasher        ports.PasswordHasher
	issuer        ports.TokenIssuer
	accessExpiry  int64
	refreshExpiry int64
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, accessExpiry, refreshExpiry int64) *Login {
	return &Login{users: users, hasher: hasher, issuer: issuer, accessExpiry: accessExpiry, refreshExpiry: refreshExpiry}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	access, err := uc.issuer.IssueAccessToken(user.ID.String(), uc.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := uc.issuer.IssueRefreshToken(user.ID.String(), uc.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh}, nil
}
