package matchctx

import (
	"time"

	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// RequestMessage is what a player handle's runner consumes off its
// internal queue: a numbered request payload with a per-request deadline.
type RequestMessage struct {
	RequestID RequestID
	Payload   []byte
	Timeout   time.Duration
}

// PlayerHandle is the uniform contract over the three bot kinds: local
// subprocess, container, and remote stream. SendRequest is fire-and-forget;
// the eventual response or failure arrives via the EventBus, keyed by
// (player id, request id). Done completes once the handle's runner task has
// fully shut down (the Go analogue of a JoinHandle).
type PlayerHandle interface {
	SendRequest(msg RequestMessage)
	Done() <-chan struct{}
	// Shutdown signals the runner to terminate its underlying process or
	// stream and returns once teardown has been initiated. Callers still
	// wait on Done for actual completion.
	Shutdown()
}

// PlayerID re-exports rules.PlayerID for callers that only import matchctx.
type PlayerID = rules.PlayerID
