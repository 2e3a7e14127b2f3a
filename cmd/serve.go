package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agentq/internal/api"
	"agentq/internal/config"
	"agentq/internal/infra/notionstore"
	"agentq/internal/infra/runlog"
)

func serveCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "serve",
		Short: "Start the task panel API",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			store := notionstore.New(cfg.Notion)

			var journal *runlog.Log
			if cfg.RunLog.Path != "" {
				var err error
				journal, err = runlog.Open(cfg.RunLog.Path)
				if err != nil {
					log.Fatal().Err(err).Msg("failed to open run journal")
				}
				defer journal.Close()
			}

			server := api.NewServer(store, journal)
			server.Run(port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}
