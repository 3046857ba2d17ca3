package remote

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// ClientConnectTimeout is spec §4.7's 10-second budget for the client to
// connect after the match has reserved a player key.
const ClientConnectTimeout = 10 * time.Second

// RemoteBotSpec adapts a pre-reserved player key to the PlayerHandle
// contract, bridging it to whichever bidirectional stream a remote client
// eventually connects with.
type RemoteBotSpec struct {
	Registry *Registry
	Key      PlayerKey
}

// Spawn returns the handle without waiting; the handle's runner goroutine
// then waits up to ClientConnectTimeout for the client to connect. If it
// never does, the handle resolves every request as Timeout, per spec §4.7 —
// a missing client does not fail match setup.
func (s RemoteBotSpec) Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error) {
	log := logger.With().Int("player_id", int(playerID)).Str("player_key", string(s.Key)).Logger()

	ready, release, err := s.Registry.AwaitClient(s.Key)
	if err != nil {
		return nil, err
	}

	h := &remoteHandle{
		playerID: playerID,
		bus:      bus,
		log:      log,
		queue:    make(chan matchctx.RequestMessage, 16),
		done:     make(chan struct{}),
		release:  release,
		registry: s.Registry,
		key:      s.Key,
	}

	go h.connectAndRun(ready)
	return h, nil
}

// remoteHandle is the PlayerHandle for a remote, externally-connected bot.
type remoteHandle struct {
	playerID rules.PlayerID
	bus      *matchctx.EventBus
	log      zerolog.Logger

	queue    chan matchctx.RequestMessage
	done     chan struct{}
	release  Release
	registry *Registry
	key      PlayerKey

	mu        sync.Mutex
	stream    BotGateway_PlayMatchServer
	connected bool
	timedOut  bool
}

func (h *remoteHandle) SendRequest(msg matchctx.RequestMessage) {
	h.mu.Lock()
	timedOut := h.timedOut
	h.mu.Unlock()
	if timedOut {
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.Timeout}})
		return
	}
	h.queue <- msg
}

func (h *remoteHandle) Done() <-chan struct{} { return h.done }

func (h *remoteHandle) Shutdown() {
	close(h.queue)
}

// connectAndRun waits for the client to arrive; on timeout it becomes an
// always-timing-out bot for the remainder of the match (spec §4.7). Once
// connected, it drains the request queue into the stream and dispatches a
// reader goroutine that resolves the event bus as responses arrive.
func (h *remoteHandle) connectAndRun(ready <-chan BotGateway_PlayMatchServer) {
	defer close(h.done)

	var stream BotGateway_PlayMatchServer
	select {
	case stream = <-ready:
		h.mu.Lock()
		h.stream = stream
		h.connected = true
		h.mu.Unlock()
	case <-time.After(ClientConnectTimeout):
		h.mu.Lock()
		h.timedOut = true
		h.mu.Unlock()
		h.log.Warn().Msg("remote bot never connected within timeout")
		h.registry.Abandon(h.key)
		h.release()
		h.drainAsTimeouts()
		return
	}

	defer h.release()

	recvErrs := make(chan error, 1)
	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				recvErrs <- err
				return
			}
			if msg.Action == nil {
				continue
			}
			h.bus.Resolve(h.playerID, matchctx.RequestID(msg.Action.ActionRequestId), matchctx.Result{Bytes: msg.Action.Content})
		}
	}()

	for {
		select {
		case msg, ok := <-h.queue:
			if !ok {
				return
			}
			err := stream.Send(&ServerMessage{ActionRequest: &ActionRequest{
				ActionRequestId: int32(msg.RequestID),
				Content:         msg.Payload,
			}})
			if err != nil {
				h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
			}
			// Timeouts for this request are enforced independently by
			// MatchCtx.Request's own context deadline, per spec §4.7
			// "A timeout is scheduled as an independent task per request."
		case err := <-recvErrs:
			h.log.Warn().Err(err).Msg("remote stream closed")
			h.drainAsTerminated()
			return
		}
	}
}

func (h *remoteHandle) drainAsTimeouts() {
	for msg := range h.queue {
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.Timeout}})
	}
}

func (h *remoteHandle) drainAsTerminated() {
	for msg := range h.queue {
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
	}
}
