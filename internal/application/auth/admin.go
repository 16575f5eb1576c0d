package auth

import (
	"context"
	"strings"

	"github.com/caseflow/auth-service/internal/domain"
)

// Admin account actions. The actor's role was already enforced by the
// router middleware; the checks here guard the invariants that survive
// any routing mistake: no self-service and never zero admins.

func (s *Service) checkAdminTarget(actorID, targetID string) error {
	if strings.TrimSpace(targetID) == "" {
		return domain.ErrMissingField("id")
	}
	if actorID == targetID {
		return domain.ErrCannotAffectSelf()
	}
	return nil
}

// SetUserRole changes the target's role. Demoting the last admin is refused.
func (s *Service) SetUserRole(ctx context.Context, actorID, targetID, role string) error {
	if err := s.checkAdminTarget(actorID, targetID); err != nil {
		return err
	}
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.Role == string(domain.RoleAdmin) && role != string(domain.RoleAdmin) {
		n, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.ErrLastAdminProtected()
		}
	}

	if err := s.users.SetRole(ctx, targetID, role); err != nil {
		return err
	}

	s.audit("user_role_changed", map[string]string{
		"actor_id": actorID, "user_id": targetID, "role": role,
	})
	return nil
}

// SetUserActive toggles the active flag. Deactivation also force-signs the
// user out everywhere; their sessions must not outlive the account.
func (s *Service) SetUserActive(ctx context.Context, actorID, targetID string, active bool) error {
	if err := s.checkAdminTarget(actorID, targetID); err != nil {
		return err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if !active && target.Role == string(domain.RoleAdmin) {
		n, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.ErrLastAdminProtected()
		}
	}

	if err := s.users.SetActive(ctx, targetID, active); err != nil {
		return err
	}

	action := "user_activated"
	if !active {
		action = "user_deactivated"
		if err := s.sessions.RevokeAllForUser(ctx, targetID); err != nil {
			return err
		}
	}

	s.audit(action, map[string]string{"actor_id": actorID, "user_id": targetID})
	return nil
}

// RevokeUserSessions force-signs the target out of every device.
func (s *Service) RevokeUserSessions(ctx context.Context, actorID, targetID string) error {
	if err := s.checkAdminTarget(actorID, targetID); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, targetID); err != nil {
		return err
	}

	s.audit("user_sessions_revoked", map[string]string{"actor_id": actorID, "user_id": targetID})
	return nil
}
