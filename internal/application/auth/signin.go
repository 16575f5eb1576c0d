package auth

import (
	"context"
	"strings"

	"github.com/caseflow/auth-service/internal/domain"
)

// SignIn authenticates a user and opens a session.
// IMPORTANT: unknown email, wrong password and inactive account all surface
// as the same invalid_credentials so a caller cannot probe accounts.
func (s *Service) SignIn(ctx context.Context, email, password string) (SessionResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || password == "" {
		return SessionResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials; a store outage is
		// not a credential failure and must keep its own code.
		if domain.Is(err, "user_not_found") {
			return SessionResult{}, domain.ErrInvalidCredentials()
		}
		return SessionResult{}, err
	}

	// Deactivation is the deletion-equivalent; the row stays but signin stops.
	if !u.IsActive {
		return SessionResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return SessionResult{}, domain.ErrInvalidCredentials()
	}

	// The only success-path write besides the registry insert.
	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return SessionResult{}, err
	}

	res, err := s.issueSession(ctx, u)
	if err != nil {
		return SessionResult{}, err
	}

	s.audit("user_signed_in", map[string]string{"user_id": u.ID})
	return res, nil
}
