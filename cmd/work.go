package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agentq/internal/config"
	"agentq/internal/dispatch"
	"agentq/internal/infra/notionstore"
	"agentq/internal/infra/worklock"
)

func workCmd() *cobra.Command {
	var (
		maxTasks int
		timeout  time.Duration
	)

	var command = &cobra.Command{
		Use:   "work",
		Short: "Drain one batch of queued tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := runContext()
			defer stop()

			cfg := config.Load()
			store := notionstore.New(cfg.Notion)
			w := buildWorker(cfg, store, dispatch.Table{}, maxTasks, timeout)

			if cfg.Redis.Addr != "" {
				lock := worklock.New(cfg.Redis)
				defer lock.Close()
				ok, err := lock.Acquire(ctx)
				if err != nil {
					return err
				}
				if !ok {
					log.Ctx(ctx).Info().Msg("another worker holds the lock, exiting")
					return nil
				}
				defer lock.Release(ctx)
			}

			err := journaled(ctx, cfg.RunLog, "worker", func(ctx context.Context) (string, error) {
				res, err := w.Run(ctx)
				if err != nil {
					return "", err
				}
				log.Ctx(ctx).Info().
					Int("done", res.Done).
					Int("failed", res.Failed).
					Msg("worker run finished")
				return fmt.Sprintf("done=%d failed=%d", res.Done, res.Failed), nil
			})
			if err != nil {
				notifyFatal(ctx, cfg.Discord, "worker", err)
			}
			return err
		},
	}

	command.Flags().IntVar(&maxTasks, "max-tasks", 0, "Max tasks per invocation (default from env)")
	command.Flags().DurationVar(&timeout, "timeout", 0, "Per-command timeout (default from env)")

	return command
}
