package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/auth-service/internal/domain"
)

// ResetTokenRepo stores single-use password reset tokens.
type ResetTokenRepo struct {
	db *sql.DB
}

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo {
	return &ResetTokenRepo{db: db}
}

func (r *ResetTokenRepo) Save(ctx context.Context, userID, token string, expiresAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `
INSERT INTO password_reset_tokens (id, user_id, token, expires_at)
VALUES ($1,$2,$3,$4);
`
	if _, err := r.db.ExecContext(ctx, q, uuid.NewString(), userID, token, expiresAt); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// Consume is the one atomic step of the reset flow: the expiry check and the
// delete happen in a single conditional statement, so two concurrent calls
// with the same valid token cannot both see a row. Expired rows fail the
// guard and stay behind, inert, until a later reset for the same user.
func (r *ResetTokenRepo) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	if token == "" {
		return "", domain.ErrMissingField("token")
	}

	const q = `
DELETE FROM password_reset_tokens
WHERE token = $1 AND expires_at > $2
RETURNING user_id;
`
	var userID string
	if err := r.db.QueryRowContext(ctx, q, token, now).Scan(&userID); err != nil {
		if isNoRows(err) {
			return "", domain.ErrResetTokenInvalid()
		}
		return "", domain.ErrDBUnavailable(err)
	}
	return userID, nil
}
