package auth

import (
	"github.com/google/uuid"

	"github.com/softdeskhq/softdesk/internal/domain"
)

func parseUserID(s string) (domain.UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return domain.UserID{}, err
	}
	return domain.NewUserID(id), nil
}
