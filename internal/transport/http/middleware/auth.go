package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/caseflow/auth-service/internal/application/auth"
	"github.com/caseflow/auth-service/internal/domain"
)

type TokenVerifier interface {
	VerifySessionToken(token string) (auth.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// SessionChecker is the minimal interface the middleware needs to confirm
// the presented token still has a registry row (i.e. was not revoked).
type SessionChecker interface {
	IsRegistered(ctx context.Context, token string) (bool, error)
}

// ExtractBearer pulls the token out of the Authorization header.
func ExtractBearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", domain.ErrTokenMissing()
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenInvalid()
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", domain.ErrTokenInvalid()
	}
	return raw, nil
}

// Auth verifies Authorization: Bearer <token> and injects the resolved
// identity into the request context. Signature and embedded expiry are
// checked first, so an expired token always fails regardless of registry
// contents; then the registry row must still exist, which makes sign-out
// and password reset take effect immediately.
func Auth(verifier TokenVerifier, sessions SessionChecker, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractBearer(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			claims, err := verifier.VerifySessionToken(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			if strings.TrimSpace(claims.UserID) == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			// Registry lookup is skipped when no checker is wired
			// (pure stateless validation for downstream routers).
			if sessions != nil {
				ok, err := sessions.IsRegistered(r.Context(), raw)
				if err != nil {
					writeErr(w, r, err)
					return
				}
				if !ok {
					writeErr(w, r, domain.ErrTokenInvalid())
					return
				}
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
