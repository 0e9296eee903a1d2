package auth

import (
	"context"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	AccessToken string
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// user must still exist.
type Refresh struct {
	users        ports.UserRepository
	issuer       ports.TokenIssuer
	accessExpiry int64
}

func NewRefresh(users ports.UserRepository, issuer ports.TokenIssuer, accessExpiry int64) *Refresh {
	return &Refresh{users: users, issuer: issuer, accessExpiry: accessExpiry}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	userID, err := uc.issuer.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domerrors.ErrInvalidCredentials
	}
	id, err := parseUserID(userID)
	if err != nil {
		return nil, domerrors.ErrInvalidCredentials
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrInvalidCredentials
	}
	access, err := uc.issuer.IssueAccessToken(user.ID.String(), uc.accessExpiry)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{AccessToken: access}, nil
}
