package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	signer   TokenSigner
	sessions SessionRegistry
	resets   ResetTokenStore
	pub      EventPublisher

	sessionTTL time.Duration
	resetTTL   time.Duration
	audit      func(action string, fields map[string]string)

	// URL prefix for reset links delivered via the mailer service,
	// e.g. https://dashboard/reset-password?token=
	resetBaseURL string

	now func() time.Time
}

type Config struct {
	SessionTokenTTL      time.Duration
	PasswordResetTTL     time.Duration
	PasswordResetBaseURL string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	sessions SessionRegistry,
	resets ResetTokenStore,
	pub EventPublisher,
	cfg Config,
) *Service {
	sessionTTL := cfg.SessionTokenTTL
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		signer:   signer,
		sessions: sessions,
		resets:   resets,
		pub:      pub,
		audit:    func(string, map[string]string) {},

		sessionTTL:   sessionTTL,
		resetTTL:     resetTTL,
		resetBaseURL: cfg.PasswordResetBaseURL,

		now: time.Now,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithClock overrides the clock, for tests that need to move time.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// SessionResult is the common output of signup and signin.
type SessionResult struct {
	User      domain.User
	Token     string
	TokenType string // "Bearer"
	ExpiresIn int64  // seconds
}

// issueSession mints a signed token and records it in the registry.
// The two writes are deliberately not one transaction: a crash in between
// leaves a signed token without a registry row, which the middleware
// rejects, and the user recovers by signing in again.
func (s *Service) issueSession(ctx context.Context, u domain.User) (SessionResult, error) {
	token, err := s.signer.SignSessionToken(u.ID, u.Email, u.Role, s.sessionTTL)
	if err != nil {
		return SessionResult{}, domain.ErrTokenSignFailed(err)
	}

	if err := s.sessions.Record(ctx, u.ID, token, s.now().Add(s.sessionTTL)); err != nil {
		return SessionResult{}, err
	}

	return SessionResult{
		User:      u,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.sessionTTL.Seconds()),
	}, nil
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
