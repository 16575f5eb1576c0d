package auth

import "context"

// SignOut revokes the presented session token by exact match.
// Revoking a token that was never recorded, already revoked or long expired
// is a no-op, so retries are always safe.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}
