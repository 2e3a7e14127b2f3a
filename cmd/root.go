package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Run() {
	var command = &cobra.Command{
		Use:   "agentq",
		Short: "Task queue runner for automation agents",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real deployments set the environment directly
			_ = godotenv.Load()
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.AddCommand(scheduleCmd())
	command.AddCommand(workCmd())
	command.AddCommand(runCmd())
	command.AddCommand(serveCmd())
	command.AddCommand(enqueueCmd())

	if err := command.Execute(); err != nil {
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}
