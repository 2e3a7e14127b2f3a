package cmd

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agentq/internal/chat"
	"agentq/internal/config"
	"agentq/internal/dispatch"
	"agentq/internal/domain"
	"agentq/internal/infra/notionstore"
)

func enqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <domain> <action> <project> [extra...]",
		Short: "Create a queued task from a chat-style command",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := runContext()
			defer stop()

			nt, err := chat.Parse(strings.Join(args, " "), domain.RequestedByManual)
			if err != nil {
				return err
			}
			nt.Icon = dispatch.Icon(nt.Type)

			cfg := config.Load()
			store := notionstore.New(cfg.Notion)
			created, err := store.Create(ctx, nt)
			if err != nil {
				return err
			}
			log.Ctx(ctx).Info().
				Str("task", created.ID).
				Str("type", created.Type).
				Str("project", created.Project).
				Msg("task enqueued")
			return nil
		},
	}
}
