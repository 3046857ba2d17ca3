// Package matchctx correlates per-player requests with their eventual
// responses or timeouts, and gives the match driver a single facade for
// issuing numbered requests and logging.
package matchctx

import (
	"sync"

	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// RequestID is a per-player monotonically increasing request sequence
// number.
type RequestID int

// RequestErrorKind distinguishes the two ways a request can fail to
// produce a bot response.
type RequestErrorKind int

const (
	// Timeout means no response arrived before the per-turn deadline.
	Timeout RequestErrorKind = iota
	// BotTerminated means the process exited or the remote stream closed.
	BotTerminated
)

// RequestError is the error returned by an unresolved request.
type RequestError struct {
	Kind RequestErrorKind
}

func (e *RequestError) Error() string {
	if e.Kind == Timeout {
		return "request timed out"
	}
	return "bot terminated"
}

// Result is what a pending request eventually resolves to: the raw bot
// response bytes, or a RequestError.
type Result struct {
	Bytes []byte
	Err   *RequestError
}

type requestKey struct {
	player rules.PlayerID
	req    RequestID
}

// EventBus correlates outstanding per-bot requests with their eventual
// responses or timeouts. It is the only widely-shared mutable structure in
// a match: critical sections are O(1) map operations and the lock is never
// held across a suspension point.
type EventBus struct {
	mu      sync.Mutex
	waiters map[requestKey]chan Result
}

// NewEventBus constructs an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{waiters: make(map[requestKey]chan Result)}
}

// register creates the channel a future resolution will be delivered on.
// Must be called before the request is dispatched to the player handle, so
// that a pathologically fast response can never race ahead of the waiter
// being registered.
func (b *EventBus) register(player rules.PlayerID, req RequestID) chan Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Result, 1)
	b.waiters[requestKey{player, req}] = ch
	return ch
}

// Resolve records the result for (player, req) and wakes the awaiting
// consumer. If the request has already been resolved (late arrival after a
// timeout, or a duplicate), the resolution is silently dropped: first
// caller wins.
func (b *EventBus) Resolve(player rules.PlayerID, req RequestID, result Result) {
	b.mu.Lock()
	ch, ok := b.waiters[requestKey{player, req}]
	if ok {
		delete(b.waiters, requestKey{player, req})
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	ch <- result
}

