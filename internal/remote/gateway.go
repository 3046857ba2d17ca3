package remote

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/metadata"
)

// PlayerKeyMetadataKey is the request-metadata key the client stream
// carries its player_key in, per spec §4.7.
const PlayerKeyMetadataKey = "player-key"

// MatchStarter is implemented by whatever owns match creation (the match
// package, or a thin wrapper around it); Gateway calls it from CreateMatch.
type MatchStarter interface {
	StartMatchWithRemoteSeat(ctx context.Context, opponentName, mapName string, playerKey PlayerKey) (matchID string, err error)
}

// Gateway implements BotGatewayServer: the user-facing create_match RPC and
// the bidirectional per-turn stream remote bots connect over.
type Gateway struct {
	UnimplementedBotGatewayServer

	Registry      *Registry
	Starter       MatchStarter
	PublicBaseURL string
	Log           zerolog.Logger
}

// NewGateway constructs a Gateway.
func NewGateway(registry *Registry, starter MatchStarter, publicBaseURL string, logger zerolog.Logger) *Gateway {
	return &Gateway{Registry: registry, Starter: starter, PublicBaseURL: publicBaseURL, Log: logger}
}

// CreateMatch generates a player key, reserves it in the routing table,
// starts the match, and returns the key and a match URL, per spec §4.7.
func (g *Gateway) CreateMatch(ctx context.Context, req *CreateMatchRequest) (*CreateMatchResponse, error) {
	key := NewPlayerKey()
	g.Registry.Reserve(key)

	matchID, err := g.Starter.StartMatchWithRemoteSeat(ctx, req.OpponentName, req.MapName, key)
	if err != nil {
		g.Registry.Abandon(key)
		return nil, fmt.Errorf("start match: %w", err)
	}

	return &CreateMatchResponse{
		MatchId:   matchID,
		PlayerKey: string(key),
		MatchUrl:  fmt.Sprintf("%s/matches/%s", g.PublicBaseURL, matchID),
	}, nil
}

// PlayMatch is the bot-facing bidirectional stream. It reads the
// player_key from request metadata and rendezvouses with the waiting
// server-side runner via the Registry.
func (g *Gateway) PlayMatch(stream BotGateway_PlayMatchServer) error {
	key, err := playerKeyFromContext(stream.Context())
	if err != nil {
		return err
	}

	g.Log.Info().Str("player_key", string(key)).Msg("remote bot connected")
	return g.Registry.ClientConnect(key, stream)
}

func playerKeyFromContext(ctx context.Context) (PlayerKey, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", fmt.Errorf("remote: missing request metadata")
	}
	values := md.Get(PlayerKeyMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "", fmt.Errorf("remote: missing %s metadata", PlayerKeyMetadataKey)
	}
	return PlayerKey(values[0]), nil
}
