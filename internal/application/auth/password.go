package auth

import (
	"context"
	"strings"

	"github.com/caseflow/auth-service/internal/domain"
)

// ResetRequestResult carries the raw reset token back to the handler.
// The handler echoes it to the caller only in development mode; in any
// mode the mailer learns it through the published event.
type ResetRequestResult struct {
	Token string
}

// RequestPasswordReset issues a fresh single-use reset token.
// The source of record discloses whether the email exists (404 on unknown
// address); see DESIGN.md for the enumeration tradeoff.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (ResetRequestResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ResetRequestResult{}, domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return ResetRequestResult{}, err
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return ResetRequestResult{}, domain.ErrRandomFailed(err)
	}

	if err := s.resets.Save(ctx, u.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return ResetRequestResult{}, err
	}

	s.audit("password_reset_requested", map[string]string{"user_id": u.ID})

	if err := s.pub.PublishPasswordReset(ctx, PasswordResetEvent{
		UserID: u.ID,
		Email:  u.Email,
		URL:    s.resetBaseURL + token,
	}); err != nil {
		return ResetRequestResult{}, err
	}

	return ResetRequestResult{Token: token}, nil
}

// CompletePasswordReset consumes the token and sets a new password.
// Consumption is a single conditional delete, so of two concurrent calls
// with the same valid token at most one can get past s.resets.Consume.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("new_password")
	}

	userID, err := s.resets.Consume(ctx, token, s.now())
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	// Every live session dies with the old password.
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	s.audit("password_reset_completed", map[string]string{"user_id": userID})
	return nil
}
