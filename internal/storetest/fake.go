// Package storetest is an in-memory ports.Store for scheduler, worker and
// panel tests. It honors the same filter semantics the remote store does.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"agentq/internal/domain"
	"agentq/internal/ports"
)

var _ ports.Store = (*Fake)(nil)

type Fake struct {
	mu    sync.Mutex
	tasks []domain.Task

	// Clock stamps CreatedAt on Create; defaults to time.Now.
	Clock func() time.Time

	// error injection
	ListErr   error
	CreateErr error
	UpdateErr error

	// Updates records every patch in call order.
	Updates []RecordedUpdate
}

type RecordedUpdate struct {
	ID    string
	Patch domain.Patch
}

func New(seed ...domain.Task) *Fake {
	return &Fake{tasks: seed}
}

func (f *Fake) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now()
}

func (f *Fake) List(_ context.Context, filter domain.Filter) ([]domain.Task, error) {
	if f.ListErr != nil {
		return nil, &domain.StoreError{Op: "list", Err: f.ListErr}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Task
	for _, t := range f.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Project != "" && t.Project != filter.Project {
			continue
		}
		if filter.RequestedBy != "" && t.RequestedBy != filter.RequestedBy {
			continue
		}
		if !filter.CreatedOnOrAfter.IsZero() && t.CreatedAt.Before(filter.CreatedOnOrAfter) {
			continue
		}
		if !filter.CreatedBefore.IsZero() && !t.CreatedAt.Before(filter.CreatedBefore) {
			continue
		}
		out = append(out, t)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *Fake) Create(_ context.Context, nt domain.NewTask) (domain.Task, error) {
	if f.CreateErr != nil {
		return domain.Task{}, &domain.StoreError{Op: "create", Err: f.CreateErr}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := domain.Task{
		ID:          uuid.NewString(),
		Name:        nt.Name,
		Status:      domain.StatusQueued,
		Type:        nt.Type,
		Project:     nt.Project,
		Payload:     nt.Payload,
		RequestedBy: nt.RequestedBy,
		ParentTask:  nt.ParentTask,
		CreatedAt:   f.now(),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *Fake) Update(_ context.Context, id string, p domain.Patch) (domain.Task, error) {
	if f.UpdateErr != nil {
		return domain.Task{}, &domain.StoreError{Op: "update", Err: f.UpdateErr}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if p.Name != nil {
			t.Name = *p.Name
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.RunCount != nil {
			t.RunCount = *p.RunCount
		}
		if p.StartedAt != nil {
			t.StartedAt = p.StartedAt
		}
		if p.FinishedAt != nil {
			t.FinishedAt = p.FinishedAt
		}
		if p.LastError != nil {
			t.LastError = *p.LastError
		}
		if p.Result != nil {
			t.Result = *p.Result
		}
		f.Updates = append(f.Updates, RecordedUpdate{ID: id, Patch: p})
		return *t, nil
	}
	return domain.Task{}, &domain.StoreError{Op: "update", Err: fmt.Errorf("no such task: %s", id)}
}

// All returns a copy of the current records.
func (f *Fake) All() []domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Get fetches one record by id.
func (f *Fake) Get(id string) (domain.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
