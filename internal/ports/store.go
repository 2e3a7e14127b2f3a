package ports

import (
	"context"

	"agentq/internal/domain"
)

type Store interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	Create(ctx context.Context, t domain.NewTask) (domain.Task, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error)
}

// Notifier delivers one human-facing message per call, single attempt.
// Delivery failure is the caller's to log, never to escalate.
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}
