// Package cli implements the matchrunner command-line interface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iasoon/planetwars-matchrunner/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the matchrunner CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "matchrunner",
		Short: "Run and inspect Planet Wars matches",
		Long: `matchrunner drives Planet Wars matches between bots.

Examples:
  matchrunner run --map maps/four_planets.json --bot "./bots/dumbbot" --bot "./bots/dumbbot" --out match.log
  matchrunner gateway --listen :7133 --opponent ./bots/dumbbot`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to config.yaml searched in ., ./configs and /etc/planetwars-matchrunner)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newGatewayCommand())

	return rootCmd
}

func loadLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}

func loadAppConfig() (*config.Config, error) {
	return config.LoadConfig(configPath)
}
