package matchctx

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/matchlog"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// playerData holds per-player runtime state: the next request id to hand
// out, and the handle through which requests reach the player's runner.
type playerData struct {
	nextRequest RequestID
	handle      PlayerHandle
}

// MatchCtx is the per-match facade: it owns the event bus, the player
// handle table, and a handle to the match logger.
type MatchCtx struct {
	bus     *EventBus
	sink    *matchlog.Sink
	log     zerolog.Logger
	mu      sync.Mutex
	players map[rules.PlayerID]*playerData
}

// New builds a MatchCtx over an already-constructed set of player handles.
func New(bus *EventBus, sink *matchlog.Sink, logger zerolog.Logger, handles map[rules.PlayerID]PlayerHandle) *MatchCtx {
	players := make(map[rules.PlayerID]*playerData, len(handles))
	for id, h := range handles {
		players[id] = &playerData{handle: h}
	}
	return &MatchCtx{bus: bus, sink: sink, log: logger, players: players}
}

// Request increments the player's request counter, dispatches the payload
// to their handle, and blocks until the response arrives or timeout elapses
// — whichever comes first wins, per the event bus's "first wins" rule.
func (m *MatchCtx) Request(ctx context.Context, player rules.PlayerID, payload []byte, timeout time.Duration) Result {
	m.mu.Lock()
	pd, ok := m.players[player]
	if !ok {
		m.mu.Unlock()
		return Result{Err: &RequestError{Kind: BotTerminated}}
	}
	pd.nextRequest++
	reqID := pd.nextRequest
	handle := pd.handle
	m.mu.Unlock()

	ch := m.bus.register(player, reqID)

	handle.SendRequest(RequestMessage{RequestID: reqID, Payload: payload, Timeout: timeout})

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case res := <-ch:
		return res
	case <-deadline.Done():
		m.bus.Resolve(player, reqID, Result{Err: &RequestError{Kind: Timeout}})
		return <-ch
	}
}

// Log forwards a typed log record to the log sink.
func (m *MatchCtx) Log(record matchlog.Message) {
	m.sink.Send(record)
}

// Shutdown drops all player handles (terminating their underlying
// processes/streams) and awaits each handle's completion.
func (m *MatchCtx) Shutdown(ctx context.Context) {
	m.mu.Lock()
	handles := make([]PlayerHandle, 0, len(m.players))
	for _, pd := range m.players {
		handles = append(handles, pd.handle)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Shutdown()
	}
	for _, h := range handles {
		select {
		case <-h.Done():
		case <-ctx.Done():
			m.log.Warn().Msg("shutdown deadline exceeded waiting for player handle")
		}
	}
}
