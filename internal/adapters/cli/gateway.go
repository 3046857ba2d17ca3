package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/iasoon/planetwars-matchrunner/internal/botrunner"
	"github.com/iasoon/planetwars-matchrunner/internal/match"
	"github.com/iasoon/planetwars-matchrunner/internal/metrics"
	"github.com/iasoon/planetwars-matchrunner/internal/remote"
)

// newGatewayCommand creates the "gateway" subcommand, which starts the
// remote-bot gRPC gateway and the prometheus metrics endpoint standalone.
func newGatewayCommand() *cobra.Command {
	var (
		listenAddr  string
		metricsAddr string
		opponent    string
		mapDir      string
		logDir      string
	)

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Serve the remote-bot gRPC gateway",
		Long: `Gateway starts the BotGateway gRPC server that lets remote bots connect
over a bidirectional stream and play matches against a fixed local opponent.

Examples:
  matchrunner gateway --listen :7133 --metrics :9133 --opponent ./bots/dumbbot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if listenAddr == "" {
				listenAddr = appCfg.GatewayListenAddr
			}
			if metricsAddr == "" {
				metricsAddr = appCfg.MetricsListenAddr
			}
			logger := loadLogger()

			registry := remote.NewRegistry()
			starter := &localOpponentStarter{
				registry:  registry,
				opponent:  opponent,
				mapDir:    mapDir,
				logDir:    logDir,
				maxTurns:  500,
				logger:    logger,
			}
			gw := remote.NewGateway(registry, starter, appCfg.GatewayPublicBaseURL, logger)

			lis, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			grpcServer := grpc.NewServer()
			remote.RegisterBotGatewayServer(grpcServer, gw)

			go func() {
				if err := metrics.Serve(metricsAddr); err != nil {
					logger.Error().Err(err).Msg("metrics server stopped")
				}
			}()

			go func() {
				logger.Info().Str("addr", listenAddr).Msg("gateway listening")
				if err := grpcServer.Serve(lis); err != nil {
					logger.Error().Err(err).Msg("gateway server stopped")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh

			logger.Info().Msg("shutting down gateway")
			grpcServer.GracefulStop()
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "gRPC listen address (defaults to config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "prometheus metrics listen address (defaults to config)")
	cmd.Flags().StringVar(&opponent, "opponent", "", "argv of the local bot remote challengers play against (required)")
	cmd.Flags().StringVar(&mapDir, "map-dir", "maps", "directory containing named map files")
	cmd.Flags().StringVar(&logDir, "log-dir", "replays", "directory to write per-match replay logs into")
	cmd.MarkFlagRequired("opponent")

	return cmd
}

func publicBaseURL(listenAddr string) string {
	return "http://localhost" + listenAddr
}

// localOpponentStarter implements remote.MatchStarter by running a match in
// the background between a local subprocess bot and the remote seat.
type localOpponentStarter struct {
	registry *remote.Registry
	opponent string
	mapDir   string
	logDir   string
	maxTurns int
	logger   zerolog.Logger
}

func (s *localOpponentStarter) StartMatchWithRemoteSeat(ctx context.Context, opponentName, mapName string, key remote.PlayerKey) (string, error) {
	matchID := uuid.NewString()
	mapPath := filepath.Join(s.mapDir, mapName+".json")
	logPath := filepath.Join(s.logDir, matchID+".log")

	if err := os.MkdirAll(s.logDir, 0o755); err != nil {
		return "", err
	}

	specs := []match.BotSpec{
		botrunner.LocalBotSpec{Argv: []string{s.opponent}},
		remote.RemoteBotSpec{Registry: s.registry, Key: key},
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.maxTurns)*2*time.Second+remote.ClientConnectTimeout)
		defer cancel()

		outcome, err := match.Run(runCtx, match.MatchConfig{
			MapPath:     mapPath,
			MaxTurns:    s.maxTurns,
			LogPath:     logPath,
			PlayerSpecs: specs,
			Logger:      s.logger,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("match_id", matchID).Msg("remote match failed")
			return
		}
		s.logger.Info().Str("match_id", matchID).Interface("outcome", outcome).Msg("remote match finished")
	}()

	return matchID, nil
}
