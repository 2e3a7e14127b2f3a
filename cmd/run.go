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
)

// runCmd is the common cron entrypoint: materialize recurring tasks, then
// drain the queue in the same process.
func runCmd() *cobra.Command {
	var (
		maxTasks int
		timeout  time.Duration
	)

	var command = &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler, then drain one worker batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := runContext()
			defer stop()

			cfg := config.Load()
			store := notionstore.New(cfg.Notion)

			sched, err := buildScheduler(cfg, store)
			if err != nil {
				return err
			}
			w := buildWorker(cfg, store, dispatch.Table{}, maxTasks, timeout)

			err = journaled(ctx, cfg.RunLog, "run", func(ctx context.Context) (string, error) {
				sres, err := sched.Run(ctx)
				if err != nil {
					return "", err
				}
				wres, err := w.Run(ctx)
				if err != nil {
					return "", err
				}
				log.Ctx(ctx).Info().
					Int("created", sres.Created).
					Int("skipped", sres.Skipped).
					Int("done", wres.Done).
					Int("failed", wres.Failed).
					Msg("run finished")
				return fmt.Sprintf("created=%d skipped=%d done=%d failed=%d",
					sres.Created, sres.Skipped, wres.Done, wres.Failed), nil
			})
			if err != nil {
				notifyFatal(ctx, cfg.Discord, "run", err)
			}
			return err
		},
	}

	command.Flags().IntVar(&maxTasks, "max-tasks", 0, "Max tasks per invocation (default from env)")
	command.Flags().DurationVar(&timeout, "timeout", 0, "Per-command timeout (default from env)")

	return command
}
