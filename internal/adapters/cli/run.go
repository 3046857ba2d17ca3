package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iasoon/planetwars-matchrunner/internal/botrunner"
	"github.com/iasoon/planetwars-matchrunner/internal/match"
)

// newRunCommand creates the "run" subcommand, which drives one match
// between local-subprocess bots from the command line to completion.
func newRunCommand() *cobra.Command {
	var (
		mapPath  string
		botArgvs []string
		logPath  string
		maxTurns int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single match to completion",
		Long: `Run spawns one local subprocess per --bot flag, in order, and drives
the match to completion using the given map.

Examples:
  matchrunner run --map maps/four_planets.json --bot "./bots/dumbbot" --bot "./bots/dumbbot" --out match.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mapPath == "" {
				return fmt.Errorf("--map is required")
			}
			if len(botArgvs) < 2 {
				return fmt.Errorf("at least two --bot flags are required")
			}
			if logPath == "" {
				logPath = "match.log"
			}

			logger := loadLogger()

			specs := make([]match.BotSpec, len(botArgvs))
			for i, argv := range botArgvs {
				specs[i] = botrunner.LocalBotSpec{Argv: strings.Fields(argv)}
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(maxTurns)*2*time.Second+30*time.Second)
			defer cancel()

			outcome, err := match.Run(ctx, match.MatchConfig{
				MapPath:     mapPath,
				MaxTurns:    maxTurns,
				LogPath:     logPath,
				PlayerSpecs: specs,
				Logger:      logger,
			})
			if err != nil {
				return fmt.Errorf("run match: %w", err)
			}

			if outcome.Winner != nil {
				fmt.Printf("Winner: player %d\n", *outcome.Winner)
			} else {
				fmt.Println("Result: draw")
			}
			for i, po := range outcome.PlayerOutcomes {
				fmt.Printf("  player %d: had_errors=%v crashed=%v\n", i+1, po.HadErrors, po.Crashed)
			}
			fmt.Printf("Replay written to %s\n", logPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "path to the map file (required)")
	cmd.Flags().StringArrayVar(&botArgvs, "bot", nil, "bot argv as a single quoted string, one per --bot flag, in player order")
	cmd.Flags().StringVar(&logPath, "out", "match.log", "path to write the newline-delimited-JSON replay log")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 500, "maximum number of turns before the match is called a draw")

	return cmd
}
