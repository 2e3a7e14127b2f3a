package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agentq/internal/config"
	"agentq/internal/infra/discord"
	"agentq/internal/infra/runlog"
	"agentq/internal/ports"
	"agentq/internal/scheduler"
	"agentq/internal/worker"
)

// runContext is one invocation's context: signal-aware and carrying a logger
// tagged with a fresh run id so interleaved log lines stay attributable.
func runContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := log.With().Str("run_id", uuid.NewString()).Logger()
	return logger.WithContext(ctx), stop
}

// journaled wraps an invocation in a runlog entry when a journal path is
// configured. Journal trouble is logged and ignored, it must never affect
// task state.
func journaled(ctx context.Context, cfg config.RunLog, kind string, fn func(context.Context) (string, error)) error {
	if cfg.Path == "" {
		_, err := fn(ctx)
		return err
	}

	journal, err := runlog.Open(cfg.Path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("run journal unavailable")
		_, err := fn(ctx)
		return err
	}
	defer journal.Close()

	id, jerr := journal.Begin(ctx, kind)
	detail, err := fn(ctx)
	if jerr != nil {
		log.Ctx(ctx).Warn().Err(jerr).Msg("failed to journal invocation start")
		return err
	}
	status := "ok"
	if err != nil {
		status = "failed"
		detail = err.Error()
	}
	if jerr := journal.Finish(ctx, id, status, detail); jerr != nil {
		log.Ctx(ctx).Warn().Err(jerr).Msg("failed to journal invocation finish")
	}
	return err
}

// notifyFatal reports an aborted invocation to the escalation channel, when
// one is configured.
func notifyFatal(ctx context.Context, cfg config.Discord, kind string, err error) {
	n := discord.New(cfg.WebhookURL)
	if !n.Enabled() {
		return
	}
	if nerr := n.Notify(ctx, "["+kind+"] Fatal error: "+err.Error()); nerr != nil {
		log.Ctx(ctx).Warn().Err(nerr).Msg("notification delivery failed")
	}
}

func buildScheduler(cfg *config.Config, store ports.Store) (*scheduler.Scheduler, error) {
	entries, err := scheduler.LoadSchedule(cfg.Scheduler.ScheduleFile)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}
	return &scheduler.Scheduler{
		Store:    store,
		Entries:  entries,
		Projects: cfg.Scheduler.Projects,
		Location: loc,
	}, nil
}

func buildWorker(cfg *config.Config, store ports.Store, dispatch worker.Dispatcher, maxTasks int, timeout time.Duration) *worker.Worker {
	if maxTasks <= 0 {
		maxTasks = cfg.Worker.MaxTasks
	}
	if timeout <= 0 {
		timeout = cfg.Worker.CommandTimeout
	}
	w := &worker.Worker{
		Store:          store,
		Dispatch:       dispatch,
		MaxTasks:       maxTasks,
		CommandTimeout: timeout,
		AgentsRoot:     cfg.Worker.AgentsRoot,
	}
	if n := discord.New(cfg.Discord.WebhookURL); n.Enabled() {
		w.Notifier = n
	}
	return w
}
