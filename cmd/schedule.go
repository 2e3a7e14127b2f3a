package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agentq/internal/config"
	"agentq/internal/infra/notionstore"
)

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Create queued tasks for recurring definitions that are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := runContext()
			defer stop()

			cfg := config.Load()
			store := notionstore.New(cfg.Notion)

			sched, err := buildScheduler(cfg, store)
			if err != nil {
				return err
			}

			err = journaled(ctx, cfg.RunLog, "scheduler", func(ctx context.Context) (string, error) {
				res, err := sched.Run(ctx)
				if err != nil {
					return "", err
				}
				log.Ctx(ctx).Info().
					Int("created", res.Created).
					Int("skipped", res.Skipped).
					Msg("scheduler run finished")
				return fmt.Sprintf("created=%d skipped=%d", res.Created, res.Skipped), nil
			})
			if err != nil {
				notifyFatal(ctx, cfg.Discord, "scheduler", err)
			}
			return err
		},
	}
}
