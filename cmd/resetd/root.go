package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"resetd/pkg/app"
	"resetd/pkg/common/config"
	"resetd/pkg/common/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "resetd",
	Short: "Reset the database and cache of a test deployment",
	Long: `resetd empties every table of the application database and flushes the
cache store. It only acts when NODE_ENV=test; the config file is read from
<config-dir>/test.yml in test mode and <config-dir>/default.yml otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"directory holding default.yml and test.yml (default $RESETD_CONFIG_DIR or .config)")
	rootCmd.AddCommand(serveCmd, runCmd)
}

// loadConfig loads the config file and applies its log section. Both
// failures are fatal.
func loadConfig() *config.Config {
	cfg := config.MustLoad(afero.NewOsFs(), configDir)
	if err := app.InitLogging(cfg); err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("invalid log configuration")
	}
	return cfg
}
