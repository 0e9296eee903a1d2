package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinUserAge is the minimum age accepted at signup.
const MinUserAge = 15

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// User is a registered account. A user manages only its own record: it may
// read, update and delete itself and nothing else.
type User struct {
	ID              UserID
	Username        string
	PasswordHash    string
	Age             int
	CanBeContacted  bool
	CanDataBeShared bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
