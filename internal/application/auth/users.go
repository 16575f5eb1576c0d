package auth

import (
	"context"
	"strings"

	"github.com/caseflow/auth-service/internal/domain"
)

// GetUserByID backs the /auth/me endpoint.
func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}
	return s.users.GetByID(ctx, userID)
}
