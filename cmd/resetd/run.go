package main

import (
	"os"

	"github.com/spf13/cobra"

	"resetd/pkg/app"
	"resetd/pkg/common/logger"
	"resetd/pkg/reset"
)

// exit codes of the run command
const (
	exitFailed   = 1
	exitRejected = 2
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reset once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		outcome, err := app.RunOnce(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		logger.GetLogger().Info().Str("outcome", outcome.String()).Msg("reset finished")
		switch outcome {
		case reset.Rejected:
			os.Exit(exitRejected)
		case reset.Failed:
			os.Exit(exitFailed)
		}
		return nil
	},
}
