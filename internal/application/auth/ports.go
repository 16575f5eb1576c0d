package auth

import (
	"context"
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for the credential store.
Only describes WHAT the auth service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	TouchLastLogin(ctx context.Context, userID string) error
	SetActive(ctx context.Context, userID string, active bool) error
	SetRole(ctx context.Context, userID string, role string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies session tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
	Exp    time.Time
}

type TokenSigner interface {
	SignSessionToken(userID, email, role string, ttl time.Duration) (string, error)
	VerifySessionToken(token string) (TokenClaims, error)
}

/*
SessionRegistry
---------------
Durable record of every issued session token. The registry row is the
authority for liveness: sign-out and password reset delete rows, and the
auth middleware rejects tokens whose row is gone even if the signature
still verifies. Expired rows are never swept; the token's own embedded
expiry keeps them inert.
*/
type SessionRegistry interface {
	Record(ctx context.Context, userID, token string, expiresAt time.Time) error
	// Revoke deletes by exact token match. Revoking an absent token is not
	// an error.
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	IsRegistered(ctx context.Context, token string) (bool, error)
}

/*
ResetTokenStore
---------------
Single-use, short-lived tokens authorizing exactly one password change.
Consume must be atomic: check-and-delete in one conditional statement so
two concurrent resets with the same token cannot both succeed.
*/
type ResetTokenStore interface {
	Save(ctx context.Context, userID, token string, expiresAt time.Time) error
	// Consume deletes the row iff the token exists and has not expired,
	// returning the owning user id. Anything else is ErrResetTokenInvalid.
	Consume(ctx context.Context, token string, now time.Time) (userID string, err error)
}

/*
EventPublisher
--------------
Publishes events to the message broker. The mailer service consumes these
and delivers reset links; auth-service never sends email directly.
*/
type EventPublisher interface {
	PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
}

type PasswordResetEvent struct {
	UserID string
	Email  string
	URL    string
}

type UserRegisteredEvent struct {
	UserID    string
	Email     string
	FirstName string
}
