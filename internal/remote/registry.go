package remote

import (
	"fmt"
	"sync"
)

// PlayerKey is a random token used to rendezvous a remote bot's stream with
// its match seat, per spec §4.7.
type PlayerKey string

type connState int

const (
	stateReserved connState = iota
	stateServerConnected
	stateClientConnected
)

type tableEntry struct {
	state      connState
	ready      chan BotGateway_PlayMatchServer // used in ServerConnected: signaled once the client arrives
	stream     BotGateway_PlayMatchServer       // set once ClientConnected, before the server side claims it
	serverDone chan struct{}                    // closed once the server side is through with the stream
}

// Registry is the process-wide player-key routing table of spec §4.7: a
// map from PlayerKey to connection state, guarded by a mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[PlayerKey]*tableEntry
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[PlayerKey]*tableEntry)}
}

// Reserve inserts a Reserved entry for key. Called when a match is created
// with a remote seat, before either side has connected.
func (r *Registry) Reserve(key PlayerKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &tableEntry{state: stateReserved, serverDone: make(chan struct{})}
}

// Release is returned by AwaitClient; the remote bot runner calls it once
// it is done driving the paired stream, letting the blocked ClientConnect
// call (and therefore the gRPC handler) return.
type Release func()

// AwaitClient is called by the match runner's remote bot runner once it is
// ready to serve key. It returns a channel that yields the client stream
// once the client connects, and a Release to call once done with it. The
// caller is responsible for enforcing spec §4.7's 10-second connect budget
// and calling Abandon on timeout.
func (r *Registry) AwaitClient(key PlayerKey) (<-chan BotGateway_PlayMatchServer, Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, nil, fmt.Errorf("remote: unknown player key")
	}

	release := func() { close(e.serverDone) }

	switch e.state {
	case stateReserved:
		e.ready = make(chan BotGateway_PlayMatchServer, 1)
		e.state = stateServerConnected
		return e.ready, release, nil
	case stateClientConnected:
		ch := make(chan BotGateway_PlayMatchServer, 1)
		ch <- e.stream
		delete(r.entries, key)
		return ch, release, nil
	default:
		return nil, nil, fmt.Errorf("remote: player key already claimed by another server runner")
	}
}

// Abandon removes a reservation that timed out waiting for a client, so a
// subsequent late connection attempt is rejected rather than silently
// paired with nothing.
func (r *Registry) Abandon(key PlayerKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// ClientConnect is called by the gRPC PlayMatch handler once it has read
// the player_key from request metadata. It either hands the stream
// straight to an already-waiting server runner, or parks it until one
// arrives. It then blocks until the server runner calls its Release, which
// keeps the gRPC handler (and therefore the stream) alive for the lifetime
// of the match.
func (r *Registry) ClientConnect(key PlayerKey, stream BotGateway_PlayMatchServer) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("remote: unknown or expired player key")
	}

	switch e.state {
	case stateReserved:
		e.state = stateClientConnected
		e.stream = stream
		r.mu.Unlock()
	case stateServerConnected:
		delete(r.entries, key)
		r.mu.Unlock()
		e.ready <- stream
	default:
		r.mu.Unlock()
		return fmt.Errorf("remote: player key already claimed by another client")
	}

	<-e.serverDone
	return nil
}
