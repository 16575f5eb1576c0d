package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/auth-service/internal/domain"
)

func TestResetTokenRepo_Save_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewResetTokenRepo(db)

	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO password_reset_tokens \(id, user_id, token, expires_at\)`).
		WithArgs(sqlmock.AnyArg(), "u1", "reset-tok", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), "u1", "reset-tok", exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenRepo_Consume_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewResetTokenRepo(db)

	now := time.Now()

	mock.ExpectQuery(`DELETE FROM password_reset_tokens\s+WHERE token = \$1 AND expires_at > \$2\s+RETURNING user_id`).
		WithArgs("reset-tok", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

	uid, err := repo.Consume(context.Background(), "reset-tok", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenRepo_Consume_UnknownOrExpired_ResetTokenInvalid(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewResetTokenRepo(db)

	// The guard covers both cases: no row at all, or a row past expires_at.
	// Either way the conditional delete matches nothing.
	mock.ExpectQuery(`DELETE FROM password_reset_tokens`).
		WithArgs("stale-tok", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "stale-tok", time.Now())
	require.Error(t, err)
	assert.True(t, domain.Is(err, "reset_token_invalid"), "got %v", err)
}

func TestResetTokenRepo_Consume_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewResetTokenRepo(db)

	mock.ExpectQuery(`DELETE FROM password_reset_tokens`).
		WithArgs("tok", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Consume(context.Background(), "tok", time.Now())
	require.Error(t, err)
	assert.True(t, domain.Is(err, "db_unavailable"))
}

func TestResetTokenRepo_Consume_EmptyToken(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	repo := NewResetTokenRepo(db)

	_, err := repo.Consume(context.Background(), "", time.Now())
	require.Error(t, err)
	assert.True(t, domain.Is(err, "missing_field"))
}
