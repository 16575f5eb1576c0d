package memory

import (
	"context"
	"sync"
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// ResetTokenStore keeps reset tokens in memory with the same
// consume-exactly-once contract as the postgres adapter.
type ResetTokenStore struct {
	mu      sync.Mutex
	byToken map[string]resetEntry
}

func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{byToken: make(map[string]resetEntry)}
}

func (s *ResetTokenStore) Save(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[token] = resetEntry{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *ResetTokenStore) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	if token == "" {
		return "", domain.ErrMissingField("token")
	}

	// Lookup, expiry check and delete under one lock: at most one caller
	// can consume a given token.
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byToken[token]
	if !ok || !entry.expiresAt.After(now) {
		return "", domain.ErrResetTokenInvalid()
	}
	delete(s.byToken, token)
	return entry.userID, nil
}
