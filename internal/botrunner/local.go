// Package botrunner implements the three PlayerHandle kinds: local
// subprocess, sandboxed container, and remote gRPC-streamed bot.
package botrunner

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// LocalBotSpec spawns a child process with the given argv and working
// directory, redirecting stdin/stdout to pipes and inheriting stderr.
type LocalBotSpec struct {
	Argv       []string
	WorkingDir string
}

// Spawn implements match.BotSpec.
func (s LocalBotSpec) Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error) {
	cmd := exec.Command(s.Argv[0], s.Argv[1:]...)
	cmd.Dir = s.WorkingDir
	cmd.Stderr = os.Stderr // inherited: not captured, per spec §4.5

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	h := &localHandle{
		playerID: playerID,
		bus:      bus,
		log:      logger.With().Int("player_id", int(playerID)).Logger(),
		cmd:      cmd,
		stdin:    stdin,
		stdout:   bufio.NewReader(stdout),
		queue:    make(chan matchctx.RequestMessage, 16),
		done:     make(chan struct{}),
	}
	go h.run()
	return h, nil
}

// localHandle is the PlayerHandle for a locally-spawned subprocess. Its
// internal queue is the single-producer-single-consumer channel required by
// the handle contract: the consumer is the runner goroutine started by Spawn.
type localHandle struct {
	playerID   rules.PlayerID
	bus        *matchctx.EventBus
	log        zerolog.Logger
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	queue      chan matchctx.RequestMessage
	done       chan struct{}
	shutOnce   sync.Once
	mu         sync.Mutex
	terminated bool
}

func (h *localHandle) SendRequest(msg matchctx.RequestMessage) {
	h.mu.Lock()
	terminated := h.terminated
	h.mu.Unlock()
	if terminated {
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
		return
	}
	h.queue <- msg
}

func (h *localHandle) Done() <-chan struct{} { return h.done }

// Shutdown kills the child process (unblocking any in-flight stdout read)
// and closes the request queue so the runner goroutine drains and exits.
func (h *localHandle) Shutdown() {
	h.shutOnce.Do(func() {
		_ = h.cmd.Process.Kill()
		close(h.queue)
	})
}

// run is the runner task: for each received request, writes payload+\n to
// stdin then reads one line from stdout. The child process is never killed
// on a plain timeout (next turn may still succeed). A write or read
// failure/EOF marks the handle terminated; the process is killed and reaped
// once the handle is shut down (queue closed) and this loop exits.
func (h *localHandle) run() {
	defer close(h.done)
	defer func() {
		_ = h.cmd.Process.Kill()
		_ = h.cmd.Wait()
	}()

	for msg := range h.queue {
		line, err := h.exchange(msg.Payload)
		if err != nil {
			h.mu.Lock()
			h.terminated = true
			h.mu.Unlock()
			h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
			h.log.Warn().Err(err).Msg("local bot terminated")
			continue
		}
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Bytes: line})
	}
}

func (h *localHandle) exchange(payload []byte) ([]byte, error) {
	if _, err := h.stdin.Write(append(payload, '\n')); err != nil {
		return nil, err
	}
	line, err := h.stdout.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line, nil
}
