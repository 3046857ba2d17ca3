package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/remote"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// RemoteContext holds state for the remote-connect-timeout scenario,
// exercising RemoteBotSpec and Registry directly without a live gRPC server.
type RemoteContext struct {
	registry *remote.Registry
	key      remote.PlayerKey
	handle   matchctx.PlayerHandle
	bus      *matchctx.EventBus
	result   matchctx.Result
}

func InitializeRemoteScenario(ctx *godog.ScenarioContext) {
	rc := &RemoteContext{}

	ctx.Step(`^a reserved remote player key with no connecting client$`, rc.aReservedRemotePlayerKey)
	ctx.Step(`^the match requests an action from that player within the connect timeout$`, rc.theMatchRequestsAnAction)
	ctx.Step(`^the request resolves as a timeout$`, rc.theRequestResolvesAsTimeout)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		rc.registry = nil
		rc.handle = nil
		rc.bus = nil
		rc.result = matchctx.Result{}
		return ctx, nil
	})
}

func (rc *RemoteContext) aReservedRemotePlayerKey() error {
	rc.registry = remote.NewRegistry()
	rc.key = remote.NewPlayerKey()
	rc.registry.Reserve(rc.key)
	rc.bus = matchctx.NewEventBus()

	spec := remote.RemoteBotSpec{Registry: rc.registry, Key: rc.key}
	h, err := spec.Spawn(context.Background(), rules.PlayerID(1), rc.bus, zerolog.Nop())
	if err != nil {
		return err
	}
	rc.handle = h
	return nil
}

func (rc *RemoteContext) theMatchRequestsAnAction() error {
	mctx := matchctx.New(rc.bus, nil, zerolog.Nop(), map[rules.PlayerID]matchctx.PlayerHandle{1: rc.handle})
	rc.result = mctx.Request(context.Background(), rules.PlayerID(1), []byte(`{}`), remote.ClientConnectTimeout+time.Second)
	return nil
}

func (rc *RemoteContext) theRequestResolvesAsTimeout() error {
	if rc.result.Err == nil || rc.result.Err.Kind != matchctx.Timeout {
		return fmt.Errorf("expected a timeout result, got %+v", rc.result)
	}
	return nil
}
