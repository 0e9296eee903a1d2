package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
)

type RegisterInput struct {
	Username        string
	Password        string
	Age             int
	CanBeContacted  bool
	CanDataBeShared bool
}

type RegisterResult struct {
	User *domain.User
}

// Register creates an account. Signup needs no authentication; the age
// floor and username uniqueness are enforced here, before persistence.
type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher) *Register {
	return &Register{users: users, hasher: hasher}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.Age < domain.MinUserAge {
		return nil, domerrors.ErrUnderage
	}
	existing, err := uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUsernameTaken
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:              domain.NewUserID(uuid.New()),
		Username:        input.Username,
		PasswordHash:    hash,
		Age:             input.Age,
		CanBeContacted:  input.CanBeContacted,
		CanDataBeShared: input.CanDataBeShared,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &RegisterResult{User: user}, nil
}
