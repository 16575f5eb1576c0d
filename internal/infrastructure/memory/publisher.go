package memory

import (
	"context"
	"sync"

	"github.com/caseflow/auth-service/internal/application/auth"
)

// NoopPublisher drops events. Dev fallback when RabbitMQ is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	return nil
}

func (NoopPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	return nil
}

// CapturingPublisher records events for assertions in tests.
type CapturingPublisher struct {
	mu         sync.Mutex
	Resets     []auth.PasswordResetEvent
	Registered []auth.UserRegisteredEvent
}

func NewCapturingPublisher() *CapturingPublisher { return &CapturingPublisher{} }

func (p *CapturingPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Resets = append(p.Resets, evt)
	return nil
}

func (p *CapturingPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Registered = append(p.Registered, evt)
	return nil
}
