package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/caseflow/auth-service/internal/domain"
)

// SignUp creates a credential row and opens the first session.
// Duplicate emails fail regardless of the existing row's active flag.
func (s *Service) SignUp(ctx context.Context, email, password, firstName, lastName string) (SessionResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if email == "" || password == "" {
		return SessionResult{}, domain.ErrInvalidField("email/password", "empty")
	}
	if firstName == "" {
		return SessionResult{}, domain.ErrMissingField("firstname")
	}
	if lastName == "" {
		return SessionResult{}, domain.ErrMissingField("lastname")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return SessionResult{}, domain.ErrHashFailed(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         string(domain.RoleUser),
		IsActive:     true,
	})
	if err != nil {
		return SessionResult{}, err
	}

	res, err := s.issueSession(ctx, created)
	if err != nil {
		return SessionResult{}, err
	}

	s.audit("user_signed_up", map[string]string{"user_id": created.ID, "email": created.Email})

	// Welcome event is best effort; signup must not fail on broker trouble.
	_ = s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:    created.ID,
		Email:     created.Email,
		FirstName: created.FirstName,
	})

	return res, nil
}
