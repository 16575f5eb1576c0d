package memory

import (
	"context"
	"sync"
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// SessionRegistry mirrors the postgres registry for tests: exact-match
// revocation, no sweeping of expired entries.
type SessionRegistry struct {
	mu sync.RWMutex
	// token -> entry
	byToken map[string]sessionEntry
	// userID -> set(token)
	userTokens map[string]map[string]struct{}
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byToken:    make(map[string]sessionEntry),
		userTokens: make(map[string]map[string]struct{}),
	}
}

func (s *SessionRegistry) Record(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[token] = sessionEntry{userID: userID, expiresAt: expiresAt}
	if s.userTokens[userID] == nil {
		s.userTokens[userID] = make(map[string]struct{})
	}
	s.userTokens[userID][token] = struct{}{}
	return nil
}

func (s *SessionRegistry) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byToken[token]
	if !ok {
		return nil // nothing to do
	}
	delete(s.byToken, token)
	delete(s.userTokens[entry.userID], token)
	return nil
}

func (s *SessionRegistry) RevokeAllForUser(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for tok := range s.userTokens[userID] {
		delete(s.byToken, tok)
	}
	delete(s.userTokens, userID)
	return nil
}

func (s *SessionRegistry) IsRegistered(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, domain.ErrMissingField("token")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byToken[token]
	return ok, nil
}

// Count reports live entries; test helper.
func (s *SessionRegistry) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}
