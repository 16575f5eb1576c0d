package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/auth-service/internal/domain"
)

// SessionRepo is the durable session registry over the user_sessions table.
// Rows are removed by sign-out, password reset and admin revocation only;
// expired rows stay until then, kept inert by the token's embedded expiry.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Record(ctx context.Context, userID, token string, expiresAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `
INSERT INTO user_sessions (id, user_id, token, expires_at)
VALUES ($1,$2,$3,$4);
`
	if _, err := r.db.ExecContext(ctx, q, uuid.NewString(), userID, token, expiresAt); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// Revoke deletes by exact token match. Zero rows affected is success: the
// session was already gone and the outcome is the same.
func (r *SessionRepo) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `DELETE FROM user_sessions WHERE token = $1;`
	if _, err := r.db.ExecContext(ctx, q, token); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `DELETE FROM user_sessions WHERE user_id = $1;`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *SessionRepo) IsRegistered(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, domain.ErrMissingField("token")
	}

	const q = `SELECT EXISTS (SELECT 1 FROM user_sessions WHERE token = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}
