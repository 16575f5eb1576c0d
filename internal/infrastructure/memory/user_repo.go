package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

// UserRepo is an in-memory credential store with the same contract as the
// postgres adapter. Used by handler tests and local experiments.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> id
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	u.CreatedAt = time.Now()
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.update(userID, func(u *domain.User) { u.PasswordHash = newHash })
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	now := time.Now()
	return r.update(userID, func(u *domain.User) { u.LastLogin = &now })
}

func (r *UserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(userID, func(u *domain.User) { u.IsActive = active })
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}
	return r.update(userID, func(u *domain.User) { u.Role = role })
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	if !domain.IsValidRole(role) {
		return 0, domain.ErrInvalidRole(role)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.byID {
		if u.Role == role && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) update(userID string, fn func(*domain.User)) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	r.byID[userID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}
