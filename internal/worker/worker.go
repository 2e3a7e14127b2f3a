// Package worker drains queued tasks one batch per invocation. Tasks run
// strictly sequentially; a single task's failure is recorded on the task and
// never stops the rest of the batch, while a store failure aborts the whole
// invocation.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"agentq/internal/dispatch"
	"agentq/internal/domain"
	"agentq/internal/ports"
)

// Dispatcher resolves a task into a command invocation and an optional
// fan-out rule. Production wiring is dispatch.Table.
type Dispatcher interface {
	Resolve(t domain.Task) (dispatch.Invocation, error)
	FollowUp(taskType string) dispatch.FollowUp
}

type Worker struct {
	Store          ports.Store
	Dispatch       Dispatcher
	Notifier       ports.Notifier
	MaxTasks       int
	CommandTimeout time.Duration
	AgentsRoot     string

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Done   int
	Failed int
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Run is one worker invocation: claim up to MaxTasks queued tasks in store
// order and execute them one at a time.
func (w *Worker) Run(ctx context.Context) (Result, error) {
	limit := w.MaxTasks
	if limit <= 0 {
		limit = 1
	}

	tasks, err := w.Store.List(ctx, domain.Filter{
		Status: domain.StatusQueued,
		Limit:  limit,
	})
	if err != nil {
		return Result{}, err
	}
	if len(tasks) == 0 {
		log.Ctx(ctx).Info().Msg("no queued tasks")
		return Result{}, nil
	}

	var res Result
	for _, t := range tasks {
		if err := w.runTask(ctx, t); err != nil {
			var storeErr *domain.StoreError
			if errors.As(err, &storeErr) {
				return res, err
			}
			res.Failed++
			continue
		}
		res.Done++
	}
	return res, nil
}

// runTask claims and executes one task. Returned errors other than
// *domain.StoreError mean the task was marked failed; the batch continues.
func (w *Worker) runTask(ctx context.Context, t domain.Task) error {
	logger := log.Ctx(ctx).With().
		Str("task", t.ID).
		Str("type", t.Type).
		Str("project", t.Project).
		Logger()

	runCount := t.RunCount + 1
	claimed, err := w.Store.Update(ctx, t.ID, domain.Patch{
		Status:    domain.StatusPtr(domain.StatusRunning),
		StartedAt: domain.TimePtr(w.now()),
		RunCount:  domain.IntPtr(runCount),
		LastError: domain.StrPtr(""),
	})
	if err != nil {
		return err
	}
	logger.Info().Int("run_count", runCount).Msg("claimed task")

	inv, err := w.Dispatch.Resolve(claimed)
	if err != nil {
		// unknown type: fail the task without spawning anything
		return w.fail(ctx, claimed, err.Error())
	}

	stdout, _, err := runCommand(ctx, inv.Argv, w.AgentsRoot, w.CommandTimeout)
	if err != nil {
		return w.fail(ctx, claimed, failureMessage(err, stdout, w.CommandTimeout))
	}

	result, isArtifact := extractResult(stdout)
	if _, err := w.Store.Update(ctx, claimed.ID, domain.Patch{
		Status:     domain.StatusPtr(domain.StatusDone),
		FinishedAt: domain.TimePtr(w.now()),
		Result:     domain.StrPtr(result),
	}); err != nil {
		return err
	}
	logger.Info().Str("result", result).Msg("task done")

	// only a marker-announced artifact can trigger fan-out; the stdout
	// fallback is a display value, not something a child task can consume
	if isArtifact {
		w.fanOut(ctx, claimed, result)
	}
	return nil
}

// failureMessage builds the durable last_error text: stderr wins, stdout is
// the fallback, and timeouts are always named as such.
func failureMessage(err error, stdout string, timeout time.Duration) string {
	var cmdErr *domain.CommandError
	if !errors.As(err, &cmdErr) {
		return err.Error()
	}
	detail := cmdErr.Output
	if detail == "" {
		detail = stdout
	}
	if cmdErr.TimedOut {
		msg := fmt.Sprintf("command timed out after %s", timeout)
		if detail != "" {
			msg += ": " + detail
		}
		return msg
	}
	if detail == "" {
		detail = cmdErr.Error()
	}
	return detail
}

// fail marks the task failed and pings the escalation channel. The error
// that got us here is the return value so the batch loop can count it.
func (w *Worker) fail(ctx context.Context, t domain.Task, msg string) error {
	if _, err := w.Store.Update(ctx, t.ID, domain.Patch{
		Status:     domain.StatusPtr(domain.StatusFailed),
		FinishedAt: domain.TimePtr(w.now()),
		LastError:  domain.StrPtr(msg),
	}); err != nil {
		return err
	}
	log.Ctx(ctx).Error().
		Str("task", t.ID).
		Str("type", t.Type).
		Str("error", msg).
		Msg("task failed")

	w.notify(ctx, fmt.Sprintf("Task failed: type=%s project=%s\n%s", t.Type, t.Project, msg))
	return fmt.Errorf("task %s: %s", t.ID, msg)
}

// fanOut applies the type's follow-up rule, one level deep. The child task
// carries ParentTask and is picked up by a later invocation, never this one.
func (w *Worker) fanOut(ctx context.Context, t domain.Task, result string) {
	rule := w.Dispatch.FollowUp(t.Type)
	if rule == nil {
		return
	}
	req := rule(t, result)
	if req == nil {
		return
	}
	child, err := w.Store.Create(ctx, *req)
	if err != nil {
		// fan-out is best effort; the parent already succeeded
		log.Ctx(ctx).Error().Err(err).Str("task", t.ID).Msg("failed to enqueue follow-up task")
		w.notify(ctx, fmt.Sprintf("Failed to enqueue %s for %s: %v", req.Type, req.Project, err))
		return
	}
	log.Ctx(ctx).Info().
		Str("task", child.ID).
		Str("type", child.Type).
		Str("parent", t.ID).
		Msg("enqueued follow-up task")
}

func (w *Worker) notify(ctx context.Context, msg string) {
	if w.Notifier == nil {
		return
	}
	if err := w.Notifier.Notify(ctx, msg); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("notification delivery failed")
	}
}
